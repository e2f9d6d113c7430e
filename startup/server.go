package startup

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casbin/casbin"
	"github.com/go-redis/redis"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"travelease_service/authorization"
	"travelease_service/domain"
	"travelease_service/handlers"
	application "travelease_service/service"
	"travelease_service/startup/config"
	"travelease_service/store"
)

const serviceName = "travelease_service"

type Server struct {
	config *config.Config
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
	}
}

func (server *Server) Start() {
	logger := log.New(os.Stdout, "[travelease-api] ", log.LstdFlags)
	storeLogger := log.New(os.Stdout, "[travelease-store] ", log.LstdFlags)
	authLogger := logrus.New()

	ctx := context.Background()

	tracer, shutdownTracer := server.initTracer(ctx)
	defer shutdownTracer()

	mongoClient := server.initMongoClient(ctx)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}(mongoClient, ctx)

	redisClient := server.initRedisClient()

	userStore := store.NewUserMongoDBStore(mongoClient, server.config.TravelDBName, tracer)
	vehicleStore := store.NewVehicleMongoDBStore(mongoClient, server.config.TravelDBName, tracer)
	bookingStore := server.initBookingStore(ctx, mongoClient, tracer, storeLogger)
	listingCache := store.NewListingRedisCache(redisClient, storeLogger, tracer)
	listingCache.Ping()

	userService := application.NewUserService(userStore, tracer)
	vehicleService := application.NewVehicleService(vehicleStore, listingCache, logger, tracer)
	bookingService := application.NewBookingService(bookingStore, application.NewMailerFromEnv(), logger, tracer)

	userHandler := handlers.NewUserHandler(logger, userService, tracer)
	vehicleHandler := handlers.NewVehicleHandler(logger, vehicleService, tracer)
	bookingHandler := handlers.NewBookingHandler(logger, bookingService, tracer)

	verifiers := server.initVerifiers(ctx, authLogger)
	enforcer := server.initEnforcer()

	server.start(logger, authLogger, enforcer, verifiers, userHandler, vehicleHandler, bookingHandler)
}

func (server *Server) initTracer(ctx context.Context) (trace.Tracer, func()) {
	if server.config.JaegerAddress == "" {
		return trace.NewNoopTracerProvider().Tracer(serviceName), func() {}
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(server.config.JaegerAddress)))
	if err != nil {
		log.Fatalf("Failed to Initialize Exporter: %v", err)
	}

	tp := newTraceProvider(exp)
	otel.SetTracerProvider(tp)
	return tp.Tracer(serviceName), func() { _ = tp.Shutdown(ctx) }
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}

// initMongoClient connects and pings; an unreachable database at startup
// is fatal to the whole process.
func (server *Server) initMongoClient(ctx context.Context) *mongo.Client {
	client, err := store.GetClient(server.config.TravelDBHost, server.config.TravelDBPort)
	if err != nil {
		log.Fatal(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}

	return client
}

func (server *Server) initRedisClient() *redis.Client {
	client, err := store.GetRedisClient(server.config.ListingCacheHost, server.config.ListingCachePort)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) initBookingStore(ctx context.Context, client *mongo.Client, tracer trace.Tracer, logger *log.Logger) domain.BookingStore {
	bookingStore := store.NewBookingMongoDBStore(client, server.config.TravelDBName, tracer)
	if err := bookingStore.EnsureIndexes(ctx); err != nil {
		logger.Println("failed to ensure booking indexes:", err)
	}
	return bookingStore
}

func (server *Server) initVerifiers(ctx context.Context, authLogger *logrus.Logger) []authorization.TokenVerifier {
	local, err := authorization.NewLocalVerifier([]byte(server.config.SecretKey))
	if err != nil {
		log.Fatal(err)
	}
	verifiers := []authorization.TokenVerifier{local}

	if server.config.FirebaseCredentials == "" {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT_PATH not set. External identity-provider tokens will be rejected.")
		return verifiers
	}

	firebaseVerifier, err := authorization.NewFirebaseVerifier(ctx, server.config.FirebaseCredentials, authLogger)
	if err != nil {
		log.Fatal(err)
	}
	return append(verifiers, firebaseVerifier)
}

func (server *Server) initEnforcer() *casbin.Enforcer {
	enforcer, err := casbin.NewEnforcerSafe("./rbac_model.conf", "./policy.csv")
	if err != nil {
		log.Fatal(err)
	}
	return enforcer
}

func (server *Server) start(logger *log.Logger, authLogger *logrus.Logger, enforcer *casbin.Enforcer,
	verifiers []authorization.TokenVerifier, userHandler *handlers.UserHandler,
	vehicleHandler *handlers.VehicleHandler, bookingHandler *handlers.BookingHandler) {

	router := mux.NewRouter()
	router.Use(MiddlewareContentTypeSet)
	userHandler.Init(router)
	vehicleHandler.Init(router)
	bookingHandler.Init(router)

	authMiddleware := authorization.Middleware(enforcer, verifiers, authLogger)
	handler := server.corsMiddleware(authMiddleware(router))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", server.config.Port),
		Handler: handler,
	}

	wait := time.Second * 15
	go func() {
		logger.Println("Server listening on port", server.config.Port)
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Error Shutting Down Server %s", err)
	}
	log.Println("Server Gracefully Stopped")
}

// corsMiddleware answers preflights and stamps the allow-list headers.
// An empty allow-list keeps the permissive behavior of early deployments.
func (server *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")

		if len(server.config.AllowedOrigins) == 0 {
			rw.Header().Set("Access-Control-Allow-Origin", "*")
		} else if originAllowed(origin, server.config.AllowedOrigins) {
			rw.Header().Set("Access-Control-Allow-Origin", origin)
			rw.Header().Set("Vary", "Origin")
		}

		rw.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		rw.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if req.Method == http.MethodOptions {
			rw.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(rw, req)
	})
}

func originAllowed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == origin {
			return true
		}
	}
	return false
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(rw, h)
	})
}
