package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/akormin/logoorder/internal/adminclient"
	"github.com/akormin/logoorder/internal/logger"
)

const usage = `usage: logoorderctl [flags] <command>

commands:
  list                  list all orders
  get <id>              show one order with full detail
  status <id> <status>  update the order status
  verify <id>           recompute the verified bit for an order
  download <dir>        download all order attachments into <dir>
`

func main() {
	serverAddr := flag.String("s", "http://127.0.0.1:8080", "order service address")
	login := flag.String("l", "", "operator login")
	password := flag.String("p", "", "operator password")
	logLevel := flag.String("v", "error", "log level")
	flag.Parse()

	if err := logger.Initialize(*logLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()

	api := adminclient.NewClient(*serverAddr)
	if *login != "" {
		if err := api.Login(ctx, *login, *password); err != nil {
			log.Fatalf("Login failed: %v", err)
		}
	}
	syncer := adminclient.NewSyncer(api)

	switch args[0] {
	case "list":
		if err := syncer.Refresh(ctx); err != nil {
			log.Fatalf("Error listing orders: %v", err)
		}
		for _, order := range syncer.Orders() {
			fmt.Printf("Order #%s - %s [%s]\n", order.ID, order.Name, order.Status)
		}

	case "get":
		if len(args) < 2 {
			log.Fatal("get: order id required")
		}
		order, err := syncer.Select(ctx, args[1])
		if err != nil {
			log.Fatalf("Error fetching order: %v", err)
		}
		fmt.Printf("Order #%s\n", order.ID)
		fmt.Printf("  Customer:   %s <%s>\n", order.Name, order.Email)
		if order.Facebook != "" {
			fmt.Printf("  Facebook:   %s\n", order.Facebook)
		}
		fmt.Printf("  Type:       %s\n", order.OrderType)
		fmt.Printf("  Status:     %s\n", order.Status)
		fmt.Printf("  Verified:   %v\n", order.Verified)
		if order.PaypalOrderID != "" {
			fmt.Printf("  Payment:    %s\n", order.PaypalOrderID)
		}
		fmt.Printf("  Details:    %s\n", order.Details)
		fmt.Printf("  Images:     %s\n", strings.Join(order.Filenames, ", "))

	case "status":
		if len(args) < 3 {
			log.Fatal("status: order id and new status required")
		}
		syncer.StageStatus(args[1], args[2])
		if err := syncer.Commit(ctx, args[1]); err != nil {
			log.Fatalf("Error updating status: %v", err)
		}
		fmt.Printf("Order #%s status set to %s\n", args[1], args[2])

	case "verify":
		if len(args) < 2 {
			log.Fatal("verify: order id required")
		}
		verified, err := api.VerifyOrder(ctx, args[1])
		if err != nil {
			log.Fatalf("Error verifying order: %v", err)
		}
		fmt.Printf("Order #%s verified: %v\n", args[1], verified)

	case "download":
		if len(args) < 2 {
			log.Fatal("download: target directory required")
		}
		if err := syncer.DownloadAll(ctx, args[1]); err != nil {
			log.Fatalf("Error downloading attachments: %v", err)
		}
		fmt.Printf("Attachments saved under %s\n", args[1])

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}
