// cmd/historian is an asynchronous archival service that pops action
// records from the coordinator's Redis journal and persists them to
// PostgreSQL. The coordinator itself never reads this data back; room state
// stays memory-resident and non-durable by design.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/roompitch/server/internal/journal"
)

// HistorianService encapsulates the Redis + DB logic for capturing room
// actions and marking rooms abandoned once they go quiet.
type HistorianService struct {
	redisClient  *redis.Client
	db           *pgxpool.Pool
	batchSize    int
	flushDelay   time.Duration
	inactivity   time.Duration
	lastActivity sync.Map // map[string]time.Time, keyed by room code

	batchMu  sync.Mutex
	batch    []journal.ActionRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment
// variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	inactivitySec := getEnvInt("ROOM_INACTIVITY_TIMEOUT_SEC", 600)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]journal.ActionRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database and starts the two main loops: the Redis
// drain with batched DB flushes, and the periodic inactivity check.
func (hs *HistorianService) Run() {
	hs.connectDB()

	go hs.readRedisLoop()
	go hs.inactivityLoop()

	log.Println("roompitch-historian service started.")
	<-hs.ctx.Done()
	log.Println("roompitch-historian shutting down.")
	hs.flushBatchToDB()
}

// connectDB builds the pgx pool from POSTGRES_* environment variables.
func (hs *HistorianService) connectDB() {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		getEnv("PG_HOST", "localhost"),
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("unable to parse pgx config: %v", err)
	}
	hs.db, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.db.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}
}

// readRedisLoop continuously BLPops records from the journal queue.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("JOURNAL_QUEUE_NAME", journal.DefaultQueueName)

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is handled.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var record journal.ActionRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid action record: %v\n", err)
				continue
			}

			hs.lastActivity.Store(record.RoomCode, time.Now())
			hs.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes if the
// threshold is reached.
func (hs *HistorianService) appendToBatch(record journal.ActionRecord) {
	hs.batchMu.Lock()
	flush := false
	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.batchSize {
		flush = true
	}
	hs.batchMu.Unlock()
	if flush {
		hs.flushBatchToDB()
	}
}

// flushBatchToDB writes the current batch in a single transaction.
func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	batchCopy := make([]journal.ActionRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	ctx := context.Background()
	err := beginTxFunc(ctx, hs.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertActionTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flushBatchToDB: %v\n", err)
	} else {
		log.Printf("Flushed %d actions to DB.\n", len(batchCopy))
	}
}

// inactivityLoop periodically marks rooms abandoned once they have been
// quiet beyond the configured threshold.
func (hs *HistorianService) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			hs.lastActivity.Range(func(key, val interface{}) bool {
				code, ok1 := key.(string)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > hs.inactivity {
					hs.markRoomAbandoned(code)
					hs.lastActivity.Delete(code)
				}
				return true
			})
		}
	}
}

// markRoomAbandoned flips a still-active room row to 'abandoned'.
func (hs *HistorianService) markRoomAbandoned(code string) {
	ctx := context.Background()
	err := beginTxFunc(ctx, hs.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE rooms
			SET status = 'abandoned', last_seen = NOW()
			WHERE code = $1 AND status = 'active'
		`
		_, e := tx.Exec(ctx, q, code)
		return e
	})
	if err != nil {
		log.Printf("failed to mark room %s abandoned: %v", code, err)
	} else {
		log.Printf("Marked room %s as 'abandoned' due to inactivity.", code)
	}
}

// insertActionTx upserts the room row and inserts one action record.
func insertActionTx(ctx context.Context, tx pgx.Tx, rec journal.ActionRecord) error {
	upsertRoomQ := `
		INSERT INTO rooms (code, status, first_seen, last_seen)
		VALUES ($1, 'active', NOW(), NOW())
		ON CONFLICT (code)
		DO UPDATE SET status = 'active', last_seen = NOW()
	`
	if _, err := tx.Exec(ctx, upsertRoomQ, rec.RoomCode); err != nil {
		return err
	}

	actionInsertQ := `
		INSERT INTO room_actions (
			room_code, action_index, actor_id, action_type, action_payload, recorded_at
		) VALUES ($1, $2, $3, $4, $5, to_timestamp($6 / 1000.0))
	`
	jsonPayload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, actionInsertQ,
		rec.RoomCode, rec.ActionIndex, rec.ActorID, rec.ActionType, jsonPayload, rec.Timestamp,
	); err != nil {
		return err
	}
	return nil
}

// beginTxFunc starts a transaction, calls f, and commits or rolls back.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func main() {
	hs := NewHistorianService()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		hs.Stop()
	}()

	hs.Run()
}
