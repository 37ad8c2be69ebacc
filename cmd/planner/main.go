package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/example/meeting-planner/internal/application"
	"github.com/example/meeting-planner/internal/config"
	httptransport "github.com/example/meeting-planner/internal/http"
	"github.com/example/meeting-planner/internal/persistence/sqlite"
)

func main() {
	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now
	secret := []byte(cfg.ServerSecret)

	roomRepo := sqlite.NewRoomRepository(storage)
	equipmentRepo := sqlite.NewEquipmentRepository(storage)
	locationRepo := sqlite.NewLocationRepository(storage)
	roleRepo := sqlite.NewRoleRepository(storage)
	contactRepo := sqlite.NewContactRepository(storage)
	planRepo := sqlite.NewPlanificationRepository(storage)
	reservationRepo := sqlite.NewReservationRepository(storage)
	participantRepo := sqlite.NewParticipantRepository(storage)
	meetingRepo := sqlite.NewMeetingRepository(storage)
	sessionRepo := sqlite.NewSessionRepository(storage)
	actionRepo := sqlite.NewActionRepository(storage)
	auditRepo := sqlite.NewAuditRepository(storage)

	rooms := newRoomRepositoryAdapter(roomRepo)
	equipment := newEquipmentRepositoryAdapter(equipmentRepo)
	locations := newLocationRepositoryAdapter(locationRepo)
	roles := newRoleDirectoryAdapter(roleRepo)
	contacts := newContactResolverAdapter(contactRepo)
	plans := newPlanificationStoreAdapter(planRepo)
	participants := newParticipantDirectoryAdapter(participantRepo)
	meetings := newMeetingStoreAdapter(meetingRepo, idGenerator)
	sessions := newSessionStoreAdapter(sessionRepo)
	actions := newActionStoreAdapter(actionRepo)
	occupancy := newOccupancyAdapter(reservationRepo, meetingRepo)
	catalog := newResourceCatalogAdapter(roomRepo, equipmentRepo)
	audit := newAuditLogAdapter(auditRepo, idGenerator, logger)

	notifier := logNotifier{logger: logger}
	invitations := logInvitationSender{logger: logger}
	calendar := logCalendarSync{idGenerator: idGenerator, logger: logger}
	exporter := logMinutesExporter{logger: logger}
	summaries := templateSummaryClient{}

	registryService := application.NewRegistryService(rooms, equipment, locations, roles, occupancy, notifier, idGenerator, now, logger)
	actionService := application.NewActionService(actions, sessions, notifier, audit, idGenerator, now, logger)
	meetingService := application.NewMeetingService(meetings, sessions, participants, actionService, exporter, summaries, cfg.AttendanceTolerance, idGenerator, now, logger)
	participantService := application.NewParticipantService(participants, contacts, roles, plans, notifier, audit, secret, idGenerator, now, logger)
	planificationService := application.NewPlanificationService(plans, participants, catalog, occupancy, meetingService, calendar, invitations, secret, cfg.BaseURL, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Planifications: httptransport.NewPlanificationHandler(planificationService, logger),
		Participants:   httptransport.NewParticipantHandler(participantService, logger),
		Meetings:       httptransport.NewMeetingHandler(meetingService, logger),
		Actions:        httptransport.NewActionHandler(actionService, logger),
		Registry:       httptransport.NewRegistryHandler(registryService, logger),
		Invitations:    httptransport.NewInvitationHandler(participantService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RateLimit(rate.Limit(50), 100, logger),
			httptransport.PrincipalFromHeaders(),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("meeting planner API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
