// plgsim - command line client and traffic simulator for the PLG demo backend
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/eldtechnologies/plgdemo/clients/go/plg"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("BACKEND_URL")
	client := plg.NewClient(baseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "health":
		resp, err := client.Health(ctx)
		if resp != nil {
			printJSON(resp)
		}
		exitOnError(err)

	case "products":
		products, err := client.Products(ctx)
		exitOnError(err)
		for _, p := range products {
			fmt.Printf("  %d  %s (%s)\n", p.ID, p.Name, p.Category)
		}

	case "events":
		events, err := client.Events(ctx)
		exitOnError(err)
		for _, e := range events {
			fmt.Printf("[%s] %-24s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Type, e.ToolName)
		}

	case "contacts":
		messages, err := client.ContactMessages(ctx)
		exitOnError(err)
		for _, m := range messages {
			fmt.Printf("[%s] %s <%s> %s: %s\n", m.Timestamp.Format("2006-01-02 15:04:05"), m.Name, m.Email, m.Product, m.Message)
		}

	case "event":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: plgsim event <type> [toolName] [detailsJSON]")
			os.Exit(1)
		}
		ev := plg.Event{Type: args[0]}
		if len(args) > 1 {
			ev.ToolName = args[1]
		}
		if len(args) > 2 {
			var details interface{}
			if err := json.Unmarshal([]byte(args[2]), &details); err != nil {
				fmt.Fprintln(os.Stderr, "Invalid JSON format in details")
				os.Exit(1)
			}
			ev.Details = details
		}
		exitOnError(client.SendEvent(ctx, ev))
		fmt.Println("Event sent successfully!")

	case "batch":
		fs := flag.NewFlagSet("batch", flag.ExitOnError)
		delay := fs.Duration("delay", 0, "pause between events")
		fs.Parse(args)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: plgsim batch [-delay 100ms] <events.json>")
			os.Exit(1)
		}
		data, err := os.ReadFile(fs.Arg(0))
		exitOnError(err)
		var events []plg.Event
		exitOnError(json.Unmarshal(data, &events))
		res := client.SendEvents(ctx, events, *delay)
		reportBatch(res)

	case "contact":
		fs := flag.NewFlagSet("contact", flag.ExitOnError)
		var msg plg.ContactMessage
		fs.StringVar(&msg.Name, "name", "", "full name (required)")
		fs.StringVar(&msg.Email, "email", "", "email address (required)")
		fs.StringVar(&msg.Company, "company", "", "company")
		fs.StringVar(&msg.Phone, "phone", "", "phone number")
		fs.StringVar(&msg.Budget, "budget", "", "budget range")
		fs.StringVar(&msg.Message, "message", "", "message (required)")
		fs.StringVar(&msg.Product, "product", "General", "product of interest")
		fs.Parse(args)
		exitOnError(client.SendContactMessage(ctx, msg))
		fmt.Println("Contact message sent successfully!")

	case "simulate":
		fs := flag.NewFlagSet("simulate", flag.ExitOnError)
		sessions := fs.Int("n", 10, "number of visitor sessions")
		leads := fs.Int("leads", 0, "number of contact messages to submit")
		delay := fs.Duration("delay", 200*time.Millisecond, "pause between events")
		seed := fs.Int64("seed", time.Now().UnixNano(), "random seed")
		fs.Parse(args)

		r := rand.New(rand.NewSource(*seed))
		var total plg.BatchResult
		for i := 0; i < *sessions && ctx.Err() == nil; i++ {
			res := client.SendEvents(ctx, plg.Session(r), *delay)
			total.Sent += res.Sent
			total.Failed = append(total.Failed, res.Failed...)
		}
		for i := 0; i < *leads && ctx.Err() == nil; i++ {
			if err := client.SendContactMessage(ctx, plg.Lead(r)); err != nil {
				total.Failed = append(total.Failed, fmt.Errorf("lead %d: %w", i, err))
			}
		}
		reportBatch(total)

	default:
		usage()
		os.Exit(1)
	}
}

func reportBatch(res plg.BatchResult) {
	fmt.Printf("Sent %d events\n", res.Sent)
	for _, err := range res.Failed {
		fmt.Fprintf(os.Stderr, "  failed: %v\n", err)
	}
	if len(res.Failed) > 0 {
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`plgsim - PLG demo backend client

Usage:
  plgsim health                          Check backend health
  plgsim products                        List demo products
  plgsim events                          List logged events
  plgsim contacts                        List contact messages
  plgsim event <type> [tool] [details]   Send one event
  plgsim batch [-delay d] <file.json>    Send a JSON array of events
  plgsim contact -name N -email E -message M [-product P ...]
                                         Submit the contact form
  plgsim simulate [-n 10] [-leads 0] [-delay 200ms] [-seed S]
                                         Simulate visitor sessions

Environment:
  BACKEND_URL  Backend address (default: http://localhost:3001)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
