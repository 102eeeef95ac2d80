package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"matchbook/internal/wire"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the matching engine")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel']")

	orderID := flag.Uint64("order-id", 0, "Order id (compulsory, must be unique per client)")
	ticker := flag.String("ticker", "AAPL", "Instrument symbol")
	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	price := flag.Uint64("price", 100, "Limit price")
	qtyStr := flag.String("qty", "10", "Quantity or comma-separated list (e.g. 10,20,50)")

	flag.Parse()

	if *orderID == 0 {
		fmt.Println("Error: -order-id is compulsory and must be non-zero.")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readEvents(conn)

	side := wire.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = wire.Sell
	}

	switch strings.ToLower(*action) {
	case "place":
		id := uint32(*orderID)
		for _, qty := range parseQuantities(*qtyStr) {
			cmd := wire.ClientCommand{
				Type:       wire.CommandNewOrder,
				OrderID:    id,
				Instrument: *ticker,
				Side:       side,
				Price:      uint32(*price),
				Count:      uint32(qty),
			}
			if err := sendNewOrder(conn, cmd); err != nil {
				log.Printf("failed to place order %d: %v", id, err)
			} else {
				fmt.Printf("-> sent order %d: %s %s %d @ %d\n", id, strings.ToUpper(*sideStr), *ticker, qty, *price)
			}
			id++
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if _, err := conn.Write(wire.EncodeCancelOrder(uint32(*orderID))); err != nil {
			log.Printf("failed to send cancel for order %d: %v", *orderID, err)
		} else {
			fmt.Printf("-> sent cancel for order %d\n", *orderID)
		}

	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("\nlistening for events... (press Ctrl+C to exit)")
	select {}
}

func parseQuantities(input string) []uint64 {
	var result []uint64
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseUint(p, 10, 32); err == nil {
			result = append(result, val)
		} else {
			log.Printf("warning: invalid quantity %q, skipping", p)
		}
	}
	return result
}

func sendNewOrder(conn net.Conn, cmd wire.ClientCommand) error {
	buf, err := wire.EncodeNewOrder(cmd)
	if err != nil {
		return err
	}
	_, err = conn.Write(buf)
	return err
}

// readEvents continuously reads and prints output events from the server.
func readEvents(conn net.Conn) {
	for {
		event, err := wire.ReadEvent(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}

		switch event.Type {
		case wire.EventOrderAdded:
			a := event.Added
			side := "BUY"
			if a.IsSell {
				side = "SELL"
			}
			fmt.Printf("\n[ADDED] %s %s order %d: %d @ %d\n", side, a.Instrument, a.OrderID, a.Count, a.Price)
		case wire.EventOrderExecuted:
			e := event.Executed
			fmt.Printf("\n[EXECUTED] resting %d vs active %d: %d @ %d (execution #%d)\n",
				e.RestingID, e.ActiveID, e.Qty, e.Price, e.ExecutionID)
		case wire.EventOrderDeleted:
			d := event.Deleted
			fmt.Printf("\n[DELETED] order %d accepted=%t\n", d.OrderID, d.Accepted)
		}
	}
}
