package telegram

import (
	"context"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// messageRequest represents a message to be processed
type messageRequest struct {
	ctx     context.Context
	userID  int64
	chatID  int64
	text    string
	lang    string
	traceID string
}

// workerPool manages parallel processing of messages
type workerPool struct {
	requestQueue chan *messageRequest
	workerCount  int
	handler      *BotHandler
	wg           sync.WaitGroup

	// Rate limiting per user
	rateLimiter   map[int64]*userRateLimit
	rateLimiterMu sync.RWMutex
}

// userRateLimit tracks rate limiting per user
type userRateLimit struct {
	lastRequest  time.Time
	requestCount int
	mu           sync.Mutex
}

const (
	maxRequestsPerSecond   = 3
	requestQueueSize       = 100
	defaultWorkerCount     = 30
	chatTurnTimeout        = 45 * time.Second
	rateLimiterCleanupTime = 5 * time.Minute
	rateLimiterMaxIdleTime = 10 * time.Minute
)

// newWorkerPool creates a new worker pool
func newWorkerPool(handler *BotHandler, workerCount int) *workerPool {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &workerPool{
		requestQueue: make(chan *messageRequest, requestQueueSize),
		workerCount:  workerCount,
		handler:      handler,
		rateLimiter:  make(map[int64]*userRateLimit),
	}
}

// start starts all workers
func (wp *workerPool) start(ctx context.Context) {
	log.Printf("Starting %d workers for parallel message processing", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
	go wp.cleanupRateLimits(ctx)
}

// worker processes messages from the queue
func (wp *workerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		case req, ok := <-wp.requestQueue:
			if !ok {
				log.Printf("Worker %d shutting down (queue closed)", id)
				return
			}
			if req == nil {
				continue
			}

			if !wp.checkRateLimit(req.userID) {
				wp.handler.sendMessage(req.chatID, t(req.lang,
					"طلبات كثيرة بسرعة، انتظر لحظة من فضلك.",
					"Too many requests at once. Please wait a moment."))
				wp.handler.endProcessing(req.userID)
				continue
			}

			wp.processMessageWithTimeout(req)
		}
	}
}

// processMessageWithTimeout runs one chat turn with context timeout
func (wp *workerPool) processMessageWithTimeout(req *messageRequest) {
	ctx, cancel := context.WithTimeout(req.ctx, chatTurnTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in message processing trace=%s user=%d: %v", req.traceID, req.userID, r)
			wp.handler.sendMessage(req.chatID, t(req.lang,
				"صار خطأ داخلي، جرب مرة ثانية.",
				"Something went wrong. Please try again."))
		}
	}()
	defer wp.handler.endProcessing(req.userID)

	if wp.handler.bot != nil {
		typing := tgbotapi.NewChatAction(req.chatID, tgbotapi.ChatTyping)
		wp.handler.bot.Send(typing)
	}

	result, err := wp.handler.assistant.Chat(ctx, req.userID, entity.ChatRequest{
		Message:   req.text,
		SessionID: wp.handler.pinnedSession(req.userID),
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Printf("Chat turn timeout trace=%s user=%d after %v", req.traceID, req.userID, chatTurnTimeout)
			wp.handler.sendMessage(req.chatID, t(req.lang,
				"تأخر الرد هالمرة، جرب ترسل رسالتك مرة ثانية.",
				"That took too long. Please try sending your message again."))
		} else {
			log.Printf("Chat turn error trace=%s user=%d: %v", req.traceID, req.userID, err)
			wp.handler.sendMessage(req.chatID, t(req.lang,
				"عذرًا، صار خطأ. جرب مرة ثانية.",
				"Sorry, something failed. Please try again."))
		}
		return
	}

	wp.handler.pinSession(req.userID, result.SessionID)
	wp.handler.sendChatResult(req.chatID, req.userID, result)
}

// checkRateLimit checks if user is within rate limit
func (wp *workerPool) checkRateLimit(userID int64) bool {
	wp.rateLimiterMu.Lock()
	defer wp.rateLimiterMu.Unlock()

	limiter, exists := wp.rateLimiter[userID]
	if !exists {
		wp.rateLimiter[userID] = &userRateLimit{lastRequest: time.Now(), requestCount: 1}
		return true
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := time.Now()
	if now.Sub(limiter.lastRequest) >= time.Second {
		limiter.requestCount = 1
		limiter.lastRequest = now
		return true
	}
	if limiter.requestCount >= maxRequestsPerSecond {
		log.Printf("Rate limit exceeded for user %d", userID)
		return false
	}
	limiter.requestCount++
	return true
}

// cleanupRateLimits removes idle rate limit entries
func (wp *workerPool) cleanupRateLimits(ctx context.Context) {
	ticker := time.NewTicker(rateLimiterCleanupTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			var toDelete []int64

			wp.rateLimiterMu.RLock()
			for userID, limiter := range wp.rateLimiter {
				limiter.mu.Lock()
				if now.Sub(limiter.lastRequest) > rateLimiterMaxIdleTime {
					toDelete = append(toDelete, userID)
				}
				limiter.mu.Unlock()
			}
			wp.rateLimiterMu.RUnlock()

			if len(toDelete) > 0 {
				wp.rateLimiterMu.Lock()
				for _, userID := range toDelete {
					delete(wp.rateLimiter, userID)
				}
				wp.rateLimiterMu.Unlock()
				log.Printf("Cleaned up %d inactive rate limiters", len(toDelete))
			}
		}
	}
}

// submit queues a message, rejecting when the pool is saturated
func (wp *workerPool) submit(req *messageRequest) bool {
	select {
	case wp.requestQueue <- req:
		return true
	default:
		log.Printf("Worker pool queue is full (%d/%d), rejecting request from user %d", len(wp.requestQueue), requestQueueSize, req.userID)
		wp.handler.sendMessage(req.chatID, t(req.lang,
			"المساعد مشغول حاليًا، انتظر شوي ورجع جرب.",
			"The assistant is busy right now. Please try again shortly."))
		wp.handler.endProcessing(req.userID)
		return false
	}
}

// shutdown gracefully shuts down the worker pool
func (wp *workerPool) shutdown() {
	log.Printf("Shutting down worker pool, %d messages in queue", len(wp.requestQueue))
	close(wp.requestQueue)
	wp.wg.Wait()
	log.Println("Worker pool shut down successfully")
}
