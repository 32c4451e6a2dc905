package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kinohall/cinema-ticketing-engine/internal/booking"
	"github.com/kinohall/cinema-ticketing-engine/internal/config"
	"github.com/kinohall/cinema-ticketing-engine/internal/database"
	"github.com/kinohall/cinema-ticketing-engine/internal/handler"
	"github.com/kinohall/cinema-ticketing-engine/internal/middleware"
	"github.com/kinohall/cinema-ticketing-engine/internal/queue"
	"github.com/kinohall/cinema-ticketing-engine/internal/repository"
	"github.com/kinohall/cinema-ticketing-engine/internal/router"
	"github.com/kinohall/cinema-ticketing-engine/internal/ticket"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Repositories and the booking engine.
	theaterRepo := repository.NewTheaterRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	showtimeRepo := repository.NewShowtimeRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	store := repository.NewBookingStore(db)

	codec := ticket.NewCodec(cfg.TicketSecret)
	bookingSvc := booking.NewService(store, store, codec)
	validator := booking.NewValidator(codec, store, store)

	// Redis-backed token bucket; a nil client disables limiting gracefully.
	rdb := config.NewRedisClient()
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBooking(e, handler.NewReservationHandler(bookingSvc, reservationRepo), cfg.JWTSecret, rl)
	router.RegisterScan(e, handler.NewScanHandler(validator), cfg.ScannerKeyHash, rl)
	router.RegisterAdmin(e, handler.NewAdminHandler(theaterRepo, seatRepo, showtimeRepo), cfg.JWTSecret)

	// Background consumers run their own reconnect loops.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := queue.StartValidationConsumer(); err != nil {
			log.Printf("validation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
