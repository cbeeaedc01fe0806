package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"smartattend/internal/audit"
	"smartattend/internal/config"
	"smartattend/internal/queue"
	"smartattend/internal/store"
)

// The audit worker drains the audit queue and appends entries to the
// "AuditLog" table, so request handling never waits on a log write.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		log.Println("QUEUE_BACKEND=memory keeps audit events inside the api process; nothing to consume here")
		return
	}
	q = queue.NewRedisQueue(redisClient.Client, "smartattend:audit")

	repo := audit.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("audit worker started, waiting for entries...")
	for msg := range messages {
		if msg.Type != audit.MessageType {
			continue
		}

		entry, err := audit.Decode(msg.Body)
		if err != nil {
			log.Printf("decode audit entry failed: %v", err)
			continue
		}

		if err := repo.Insert(ctx, entry); err != nil {
			log.Printf("persist audit entry %s failed: %v", entry.EntryID, err)
			continue
		}
		log.Printf("audit: %s %s %s", entry.ActorID, entry.Action, entry.Target)
	}

	log.Println("audit worker stopped")
}
