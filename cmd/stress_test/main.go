package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rl1809/campus-canteen/internal/adapter/storage"
	"github.com/rl1809/campus-canteen/internal/core/domain"
	"github.com/rl1809/campus-canteen/internal/core/service"
)

const (
	itemID        = "lunch-special"
	initialStock  = domain.DefaultStock
	totalRequests = 50
	queueSize     = 100
)

// countingSink counts recorded order events.
type countingSink struct {
	placed atomic.Int32
}

func (s *countingSink) Record(ctx context.Context, event domain.Event) error {
	if event.Kind == domain.EventOrderPlaced {
		s.placed.Add(1)
	}
	return nil
}

func main() {
	ctx := context.Background()

	journal := service.NewJournal(queueSize, nil)
	sink := &countingSink{}
	journal.Start(1, sink)

	store := storage.NewMemoryStore(domain.DefaultStartingBalance, initialStock, journal)
	dispatcher := service.NewDispatcher(store, nil)

	setup := []service.Request{
		service.NewRequest(service.CommandAddMenuItem, map[string]string{
			service.ParamItemID:      itemID,
			service.ParamName:        "Lunch Special",
			service.ParamDescription: "rice and curry",
			service.ParamPrice:       "4.5",
			service.ParamItemType:    "main",
		}),
	}
	for i := 0; i < totalRequests; i++ {
		setup = append(setup, service.NewRequest(service.CommandCreateUser, map[string]string{
			service.ParamUserID:    fmt.Sprintf("user-%d", i),
			service.ParamName:      fmt.Sprintf("Student %d", i),
			service.ParamYearLevel: "11",
		}))
	}
	for _, req := range setup {
		if result := dispatcher.Dispatch(ctx, req); result != service.Success {
			log.Fatalf("setup %s failed: %s", req.Command, result)
		}
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			result := dispatcher.Dispatch(ctx, service.NewRequest(service.CommandPlaceOrder, map[string]string{
				service.ParamUserID:    fmt.Sprintf("user-%d", userID),
				service.ParamOrderID:   fmt.Sprintf("order-%d", userID),
				service.ParamItemID:    itemID,
				service.ParamOrderType: string(domain.OrderTypePickup),
			}))
			if result == service.Success {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)
	journal.Close()

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Journaled:        %d\n", sink.placed.Load())
	fmt.Printf("Dropped:          %d\n", journal.Dropped())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d orders succeeded, %d failed\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	item := dispatcher.Dispatch(ctx, service.NewRequest(service.CommandGetItem, map[string]string{
		service.ParamItemID: itemID,
	}))
	fmt.Printf("Final Item: %s\n", item)

	if strings.Contains(item, "amountAvailable=0,") {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Println("FAIL: Expected stock 0")
	}

	if sink.placed.Load() == success {
		fmt.Println("PASS: Every accepted order was journaled")
	} else {
		fmt.Printf("FAIL: Expected %d journaled orders, got %d\n", success, sink.placed.Load())
	}
}
