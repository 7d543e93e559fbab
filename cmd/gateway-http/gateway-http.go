package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awsSession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DRLee98/random-chat-backend-sub000/core"
	handler "github.com/DRLee98/random-chat-backend-sub000/handler/http"
	"github.com/DRLee98/random-chat-backend-sub000/platform/cache"
	"github.com/DRLee98/random-chat-backend-sub000/platform/limiter"
	"github.com/DRLee98/random-chat-backend-sub000/platform/lock"
	"github.com/DRLee98/random-chat-backend-sub000/platform/metrics"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pubsub"
	"github.com/DRLee98/random-chat-backend-sub000/platform/redis"
	"github.com/DRLee98/random-chat-backend-sub000/platform/schedule"
	"github.com/DRLee98/random-chat-backend-sub000/service/block"
	"github.com/DRLee98/random-chat-backend-sub000/service/device"
	"github.com/DRLee98/random-chat-backend-sub000/service/invite"
	"github.com/DRLee98/random-chat-backend-sub000/service/member"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
	"github.com/DRLee98/random-chat-backend-sub000/service/room"
	"github.com/DRLee98/random-chat-backend-sub000/service/session"
	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

// Logging and telemetry identifiers.
const (
	component                = "gateway-http"
	namespaceCache           = "cache"
	namespaceService         = "service"
	namespaceSource          = "source"
	namespaceSweep           = "sweep"
	subsystemHit             = "hit"
	storeCache               = "redis"
	storeLock                = "redis"
	storeService             = "postgres"
)

// Versions.
const (
	versionCurrent = "0.1"
)

// Supported source types.
const (
	sourceMem = "mem"
	sourceNop = "nop"
	sourceSQS = "sqs"
)

// Prefixes.
const (
	prefixLock        = "chat"
	prefixRateLimiter = "ratelimiter:user:"
)

// Timeouts
const (
	defaultReadTimeout  = 2 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// Buildtime vars.
var (
	revision = "0000000-dev"
)

func main() {
	var (
		begin = time.Now()

		awsID           = flag.String("aws.id", "", "Identifier for AWS requests")
		awsRegion       = flag.String("aws.region", "us-east-1", "AWS Region to operate in")
		awsSecret       = flag.String("aws.secret", "", "Identification secret for AWS requests")
		inviteLimit     = flag.Int64("invite.limit", 10, "Invite batches a user can create per minute")
		listenAddr      = flag.String("listen.addr", ":8083", "HTTP bind address for main API")
		lockTTL         = flag.Duration("lock.ttl", lock.DefaultTTL, "Lease duration of per-room invite locks")
		namespace       = flag.String("namespace", "random_chat", "Storage namespace the API operates in")
		postgresURL     = flag.String("postgres.url", "", "Postgres URL to connect to")
		redisAddr       = flag.String("redis.addr", ":6379", "Redis address to connect to")
		shutdownTimeout = flag.Duration("shutdown.timeout", 15*time.Second, "Time granted to in-flight work on shutdown")
		source          = flag.String("source", sourceNop, "Source type used for notification propagation")
		sweepInterval   = flag.Duration("sweep.interval", time.Hour, "Interval of the expired invite sweep")
		telemetryAddr   = flag.String("telemetry.addr", ":9000", "HTTP bind address where prometheus telemetry is exposed")
	)
	flag.Parse()

	// Setup logging.
	logger := log.With(
		log.NewJSONLogger(os.Stdout),
		"caller", log.Caller(3),
		"component", component,
		"revision", revision,
	)

	hostname, err := os.Hostname()
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
	}

	logger = log.With(logger, "host", hostname)

	// Setup instrumentation.
	go func(addr string) {
		logger.Log(
			"duration", time.Since(begin).Nanoseconds(),
			"lifecycle", "start",
			"listen", addr,
			"sub", "telemetry",
		)

		telemetry := http.NewServeMux()
		telemetry.Handle("/metrics", promhttp.Handler())

		err := http.ListenAndServe(addr, telemetry)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort", "sub", "telemetry")
			os.Exit(1)
		}
	}(*telemetryAddr)

	cacheFieldKeys := []string{
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldStore,
	}

	cacheErrCount, cacheOpCount, cacheOpLatency := metrics.KeyMetrics(
		namespaceCache,
		cacheFieldKeys...,
	)

	cacheHitCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespaceCache,
		Subsystem: subsystemHit,
		Name:      "count",
		Help:      "Number of cache hits",
	}, cacheFieldKeys)

	serviceErrCount, serviceOpCount, serviceOpLatency := metrics.KeyMetrics(
		namespaceService,
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldService,
		metrics.FieldStore,
	)

	sourceErrCount, sourceOpCount, sourceQueueLatency := metrics.QueueMetrics(
		namespaceSource,
	)

	sweepCount := metrics.SweepMetrics(namespaceSweep)

	// Setup clients.
	var (
		aSession = awsSession.Must(awsSession.NewSession(&aws.Config{
			Credentials: credentials.NewStaticCredentials(*awsID, *awsSecret, ""),
			Region:      aws.String(*awsRegion),
		}))
		redisPool   = redis.Pool(*redisAddr, "")
		rateLimiter = limiter.Redis(redisPool, prefixRateLimiter)
		sqsAPI      = sqs.New(aSession)
	)

	pgClient, err := sqlx.Connect(storeService, *postgresURL)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	// Setup caches.
	var notificationCounts cache.CountService
	notificationCounts = cache.RedisCountService(redisPool)
	notificationCounts = cache.InstrumentCountServiceMiddleware(
		component,
		storeCache,
		cacheErrCount,
		cacheHitCount,
		cacheOpCount,
		cacheOpLatency,
	)(notificationCounts)

	// Setup sources.
	var notificationSource notification.Source

	switch *source {
	case sourceMem:
		notificationSource = notification.MemSource()
	case sourceNop:
		notificationSource = notification.NopSource()
	case sourceSQS:
		notificationSource, err = notification.SQSSource(sqsAPI)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort")
			os.Exit(1)
		}
	default:
		logger.Log(
			"err", fmt.Sprintf("Source type '%s' not supported", *source),
			"lifecycle", "abort",
		)
		os.Exit(1)
	}

	notificationSource = notification.InstrumentSourceMiddleware(
		component,
		*source,
		sourceErrCount,
		sourceOpCount,
		sourceQueueLatency,
	)(notificationSource)
	notificationSource = notification.LogSourceMiddleware(*source, logger)(notificationSource)

	// Setup locking.
	var locker lock.Locker
	locker = lock.RedisLocker(redisPool, prefixLock, *lockTTL, lock.DefaultWait)
	locker = lock.LogLockerMiddleware(logger, storeLock)(locker)

	// Setup fan-out.
	bus := pubsub.New(logger, 0)
	bus.Start()

	// Setup services.
	var blocks block.Service
	blocks = block.PostgresService(pgClient)
	blocks = block.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(blocks)
	blocks = block.LogServiceMiddleware(logger, storeService)(blocks)

	var devices device.Service
	devices = device.PostgresService(pgClient)
	devices = device.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(devices)
	devices = device.LogServiceMiddleware(logger, storeService)(devices)

	var invites invite.Service
	invites = invite.PostgresService(pgClient)
	invites = invite.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(invites)
	invites = invite.LogServiceMiddleware(logger, storeService)(invites)

	var members member.Service
	members = member.PostgresService(pgClient)
	members = member.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(members)
	members = member.LogServiceMiddleware(logger, storeService)(members)

	var notifications notification.Service
	notifications = notification.PostgresService(pgClient)
	notifications = notification.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(notifications)
	notifications = notification.LogServiceMiddleware(logger, storeService)(notifications)
	// Combine notification service and source.
	notifications = notification.SourcingServiceMiddleware(notificationSource)(notifications)
	// Wrap service with caching.
	notifications = notification.CacheServiceMiddleware(notificationCounts)(notifications)

	var rooms room.Service
	rooms = room.PostgresService(pgClient)
	rooms = room.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(rooms)
	rooms = room.LogServiceMiddleware(logger, storeService)(rooms)

	var sessions session.Service
	sessions = session.PostgresService(pgClient)
	sessions = session.LogServiceMiddleware(logger, storeService)(sessions)

	var users user.Service
	users = user.PostgresService(pgClient)
	users = user.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(users)
	users = user.LogServiceMiddleware(logger, storeService)(users)

	notify := core.NotifyAsync(logger, core.Notify(notifications))

	// Setup sweep.
	expire := core.InviteExpire(invites, locker, rooms)

	sweeper := schedule.New(logger, "inviteExpire", *sweepInterval, func(now time.Time) error {
		n, err := expire(*namespace, now)

		sweepCount.With(metrics.FieldOutcome, "discarded").Add(float64(n))

		if err != nil {
			sweepCount.With(metrics.FieldOutcome, "failed").Add(1)

			logger.Log(
				"discarded", n,
				"err", err,
				"job", "inviteExpire",
				"namespace", *namespace,
			)
		}

		return nil
	})

	err = sweeper.Start()
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort", "sub", "sweep")
		os.Exit(1)
	}

	// Setup middlewares.
	var (
		withBase = handler.Chain(
			handler.CtxPrepare(*namespace, versionCurrent),
			handler.Log(logger),
			handler.Instrument(component),
			handler.SecureHeaders(),
			handler.DebugHeaders(revision, hostname),
			handler.CORS(),
		)
		withUser = handler.Chain(
			withBase,
			handler.Gzip(),
			handler.HasUserAgent(),
			handler.ValidateContent(),
			handler.CtxDeviceID(),
			handler.CtxUser(sessions, users),
		)
		withSocket = handler.Chain(
			withBase,
			handler.CtxDeviceID(),
			handler.CtxUser(sessions, users),
		)
		withInviteLimit = handler.Chain(
			withUser,
			handler.RateLimit(rateLimiter, *inviteLimit, time.Minute),
		)
	)

	// Setup Router.
	router := mux.NewRouter().StrictSlash(true)

	router.Methods("GET").Path(`/health-83650126947723105`).Name("healthcheck").HandlerFunc(
		handler.Wrap(
			handler.CtxPrepare(*namespace, versionCurrent),
			handler.Health(pgClient, redisPool),
		),
	)

	current := router.PathPrefix(fmt.Sprintf("/%s", versionCurrent)).Subrouter()

	// Block routes.
	current.Methods("GET").Path(`/me/blocks`).Name("blockListMine").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.BlockListMine(
				core.BlockListMine(blocks, users),
			),
		),
	)

	current.Methods("PUT").Path(`/me/blocks/{userID:[0-9]+}`).Name("blockCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.BlockCreate(
				core.BlockCreate(blocks, users),
			),
		),
	)

	current.Methods("DELETE").Path(`/me/blocks/{userID:[0-9]+}`).Name("blockDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.BlockDelete(
				core.BlockDelete(blocks),
			),
		),
	)

	// Device routes.
	current.Methods("DELETE").Path(`/me/devices/{deviceID}`).Name("deviceDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.DeviceDelete(
				core.DeviceDelete(devices),
			),
		),
	)

	current.Methods("PUT").Path(`/me/devices/{deviceID}`).Name("deviceUpdate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.DeviceUpdate(
				core.DeviceUpdate(devices),
			),
		),
	)

	// Invite routes.
	current.Methods("GET").Path(`/me/invites`).Name("inviteListPending").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.InviteListPending(
				core.InviteListPending(invites, rooms),
			),
		),
	)

	current.Methods("POST").Path(`/me/invites`).Name("inviteCreate").HandlerFunc(
		handler.Wrap(
			withInviteLimit,
			handler.InviteCreate(
				core.InviteCreate(invites, rooms, users, notify),
			),
		),
	)

	current.Methods("GET").Path(`/me/invites/candidates`).Name("inviteCandidates").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.InviteCandidates(
				core.InviteCandidates(blocks, members, users),
			),
		),
	)

	current.Methods("GET").Path(`/me/invites/subscribe`).Name("inviteStatusSubscribe").HandlerFunc(
		handler.Wrap(
			withSocket,
			handler.InviteStatusSubscribe(logger, bus),
		),
	)

	current.Methods("PUT").Path(`/me/invites/{inviteID:[0-9]+}`).Name("inviteRespond").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.InviteRespond(
				core.InviteRespond(
					invites,
					locker,
					members,
					rooms,
					users,
					bus,
					notify,
				),
			),
		),
	)

	// Notification routes.
	current.Methods("GET").Path(`/me/notifications`).Name("notificationListMine").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.NotificationListMine(
				core.NotificationListMine(notifications),
			),
		),
	)

	current.Methods("GET").Path(`/me/notifications/unread`).Name("notificationUnreadCount").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.NotificationUnreadCount(
				core.NotificationUnreadCount(notifications),
			),
		),
	)

	current.Methods("PUT").Path(`/me/notifications/{notificationID:[0-9]+}/read`).Name("notificationMarkRead").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.NotificationMarkRead(
				core.NotificationMarkRead(notifications),
			),
		),
	)

	// Room routes.
	current.Methods("GET").Path(`/me/rooms`).Name("roomListMine").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.RoomListMine(
				core.RoomListMine(members, rooms),
			),
		),
	)

	// User routes.
	current.Methods("GET").Path(`/me`).Name("userRetrieveMe").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.UserRetrieveMe(),
		),
	)

	// Setup server.
	server := &http.Server{
		Addr:         *listenAddr,
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	go func() {
		logger.Log(
			"duration", time.Since(begin).Nanoseconds(),
			"lifecycle", "start",
			"listen", *listenAddr,
			"sub", "api",
		)

		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Log("err", err, "lifecycle", "abort", "sub", "api")
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		*shutdownTimeout,
		map[string]gfshutdown.Operation{
			"api": func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
			"sweep": func(ctx context.Context) error {
				return sweeper.Stop(ctx)
			},
			"bus": func(ctx context.Context) error {
				bus.Stop()
				return nil
			},
		},
	)

	code := <-wait

	_ = pgClient.Close()
	_ = redisPool.Close()

	logger.Log(
		"code", code,
		"duration", time.Since(begin).Nanoseconds(),
		"lifecycle", "stop",
	)

	os.Exit(code)
}
