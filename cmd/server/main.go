package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/studybuddy-app/backend/internal/config"
	"github.com/studybuddy-app/backend/internal/database"
	"github.com/studybuddy-app/backend/internal/handlers"
	"github.com/studybuddy-app/backend/internal/jobs"
	"github.com/studybuddy-app/backend/internal/realtime"
	"github.com/studybuddy-app/backend/internal/repository"
	cronjobs "github.com/studybuddy-app/backend/internal/scheduler"
	"github.com/studybuddy-app/backend/internal/services"
	"github.com/studybuddy-app/backend/pkg/logger"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	groupMsgRepo := repository.NewGroupMessageRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	callRepo := repository.NewCallRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	friendService := services.NewFriendService(userRepo)
	sessionService := services.NewSessionService(sessionRepo)
	groupService := services.NewGroupService(groupRepo, groupMsgRepo, userRepo)
	groupMsgService := services.NewGroupMessageService(groupMsgRepo, groupRepo)
	messageService := services.NewMessageService(messageRepo)
	callService := services.NewCallService(callRepo)
	reviewService := services.NewReviewService(reviewRepo, userRepo)
	matchClient := services.NewMatchClient(cfg.MatchServiceURL)
	buddyService := services.NewBuddyService(userRepo, reviewRepo, matchClient)

	// --- Realtime ---
	registry := realtime.NewRegistry()
	rooms := realtime.NewRooms()
	relay := realtime.NewRelay(registry, rooms)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	friendHandler := handlers.NewFriendHandler(friendService)
	sessionHandler := handlers.NewSessionHandler(sessionService, relay)
	groupHandler := handlers.NewGroupHandler(groupService, relay)
	groupMsgHandler := handlers.NewGroupMessageHandler(groupMsgService, relay)
	callHandler := handlers.NewCallHandler(callService, userService, relay, cfg)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	buddyHandler := handlers.NewBuddyHandler(buddyService)
	wsHandler := handlers.NewWSHandler(registry, rooms, relay, messageService, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateProfileHandler).Methods("PUT")

	// Friend request routes
	friendRoutes := router.PathPrefix("/friendRequests").Subrouter()
	friendRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	friendRoutes.HandleFunc("/sendFriendRequest", friendHandler.SendFriendRequestHandler).Methods("POST")
	friendRoutes.HandleFunc("/pendingRequests", friendHandler.GetPendingRequestsHandler).Methods("GET")
	friendRoutes.HandleFunc("/respondToFriendRequest", friendHandler.RespondToFriendRequestHandler).Methods("POST")
	friendRoutes.HandleFunc("/friendsList", friendHandler.GetFriendsListHandler).Methods("GET")
	friendRoutes.HandleFunc("/removeFriend", friendHandler.RemoveFriendHandler).Methods("POST")

	// Study group routes
	groupRoutes := router.PathPrefix("/study-groups").Subrouter()
	groupRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	groupRoutes.HandleFunc("", groupHandler.CreateGroupHandler).Methods("POST")
	groupRoutes.HandleFunc("", groupHandler.GetGroupsHandler).Methods("GET")
	groupRoutes.HandleFunc("/{id}", groupHandler.GetGroupHandler).Methods("GET")
	groupRoutes.HandleFunc("/{id}/join", groupHandler.JoinGroupHandler).Methods("POST")
	groupRoutes.HandleFunc("/{id}/requests/{userId}", groupHandler.HandleJoinRequestHandler).Methods("PUT")
	groupRoutes.HandleFunc("/{id}/leave", groupHandler.LeaveGroupHandler).Methods("POST")

	// Study session routes
	sessionRoutes := router.PathPrefix("/study-sessions").Subrouter()
	sessionRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	sessionRoutes.HandleFunc("", sessionHandler.CreateSessionHandler).Methods("POST")
	sessionRoutes.HandleFunc("", sessionHandler.GetSessionsHandler).Methods("GET")
	sessionRoutes.HandleFunc("/{id}/status", sessionHandler.UpdateSessionStatusHandler).Methods("PUT")
	sessionRoutes.HandleFunc("/{id}/notification", sessionHandler.UpdateNotificationFlagsHandler).Methods("PUT")
	sessionRoutes.HandleFunc("/{id}", sessionHandler.DeleteSessionHandler).Methods("DELETE")

	// Group chat routes
	groupMsgRoutes := router.PathPrefix("/group-messages").Subrouter()
	groupMsgRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	groupMsgRoutes.HandleFunc("/{groupId}", groupMsgHandler.GetMessagesHandler).Methods("GET")
	groupMsgRoutes.HandleFunc("/{groupId}", groupMsgHandler.SendMessageHandler).Methods("POST")
	groupMsgRoutes.HandleFunc("/{groupId}/messages/{messageId}", groupMsgHandler.DeleteMessageHandler).Methods("DELETE")
	groupMsgRoutes.HandleFunc("/{groupId}/messages/{messageId}/read", groupMsgHandler.MarkReadHandler).Methods("POST")

	// Video call routes
	callRoutes := router.PathPrefix("/calls").Subrouter()
	callRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	callRoutes.HandleFunc("/initiate", callHandler.InitiateCallHandler).Methods("POST")
	callRoutes.HandleFunc("/respond", callHandler.RespondToCallHandler).Methods("POST")
	callRoutes.HandleFunc("/token", callHandler.GetRoomTokenHandler).Methods("GET")

	// Review routes
	reviewRoutes := router.PathPrefix("/reviews").Subrouter()
	reviewRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	reviewRoutes.HandleFunc("", reviewHandler.SubmitReviewHandler).Methods("POST")
	reviewRoutes.HandleFunc("/user/{id}", reviewHandler.GetUserReviewsHandler).Methods("GET")

	// Study buddy discovery routes
	buddyRoutes := router.PathPrefix("/study-buddy").Subrouter()
	buddyRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	buddyRoutes.HandleFunc("/search", buddyHandler.SearchHandler).Methods("GET")
	buddyRoutes.HandleFunc("/user/{id}", buddyHandler.GetUserDetailHandler).Methods("GET")

	// Direct chat history
	messageRoutes := router.PathPrefix("/messages").Subrouter()
	messageRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	messageRoutes.HandleFunc("/{friendId}", wsHandler.GetChatHistoryHandler).Methods("GET")

	// WebSocket endpoint (authenticates via ?token=)
	router.HandleFunc("/ws", wsHandler.ConnectHandler)

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background jobs
	reminder := jobs.NewSessionReminder(sessionService, relay)
	go reminder.Start(context.Background())
	cronjobs.StartCleanupJobs(callService, groupRepo)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
