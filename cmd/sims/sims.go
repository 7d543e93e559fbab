package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awsSession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sqs"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-kit/kit/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DRLee98/random-chat-backend-sub000/core"
	"github.com/DRLee98/random-chat-backend-sub000/platform/metrics"
	platformSNS "github.com/DRLee98/random-chat-backend-sub000/platform/sns"
	platformSQS "github.com/DRLee98/random-chat-backend-sub000/platform/sqs"
	"github.com/DRLee98/random-chat-backend-sub000/service/device"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
)

// Logging and telemetry identifiers.
const (
	component        = "sims"
	namespaceService = "service"
	namespaceSource  = "source"
	sourceService    = "sqs"
	storeService     = "postgres"
)

// Queue names.
const (
	queueEndpointChanges = "endpoint-changes"
)

// Buildtime vars.
var (
	revision = "0000000-dev"
)

func main() {
	var (
		begin = time.Now()
		arns  = platformARNs{}

		awsID           = flag.String("aws.id", "", "Identifier for AWS requests")
		awsRegion       = flag.String("aws.region", "us-east-1", "AWS region to operate in")
		awsSecret       = flag.String("aws.secret", "", "Identification secret for AWS requests")
		namespace       = flag.String("namespace", "random_chat", "Storage namespace endpoint changes apply to")
		postgresURL     = flag.String("postgres.url", "", "Postgres URL to connect to")
		shutdownTimeout = flag.Duration("shutdown.timeout", 15*time.Second, "Time granted to in-flight pushes on shutdown")
		telemetryAddr   = flag.String("telemetry.addr", ":9001", "Address to expose telemetry on")
	)
	flag.Var(&arns, "platform", "Repeated <platform>=<application arn> pairs.")
	flag.Parse()

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

	// Setup clients.
	var (
		aSession = awsSession.Must(awsSession.NewSession(&aws.Config{
			Credentials: credentials.NewStaticCredentials(*awsID, *awsSecret, ""),
			Region:      aws.String(*awsRegion),
		}))
		snsAPI = sns.New(aSession)
		sqsAPI = sqs.New(aSession)
	)

	pgClient, err := sqlx.Connect(storeService, *postgresURL)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	// Setup services.
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

	// Setup sources.
	notificationSource, err := notification.SQSSource(sqsAPI)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}
	notificationSource = notification.InstrumentSourceMiddleware(
		component,
		sourceService,
		sourceErrCount,
		sourceOpCount,
		sourceQueueLatency,
	)(notificationSource)
	notificationSource = notification.LogSourceMiddleware(sourceService, logger)(notificationSource)

	logger.Log(
		"duration", time.Since(begin).Nanoseconds(),
		"lifecycle", "start",
		"platforms", arns.String(),
		"sub", "worker",
	)

	var (
		stop = make(chan struct{})
		wg   sync.WaitGroup
	)

	// React to SNS endpoint changes.
	qURL, err := platformSQS.QueueURL(sqsAPI, queueEndpointChanges)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	changec := make(chan endpointChange)

	go func() {
		err := consumeEndpointChange(sqsAPI, qURL, changec, stop)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort")
			os.Exit(1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		disable := core.DeviceDisable(devices)

		for {
			select {
			case <-stop:
				return
			case c := <-changec:
				err := endpointUpdate(disable, *namespace, c)
				if err != nil {
					logger.Log("err", err, "lifecycle", "abort")
					os.Exit(1)
				}
			}
		}
	}()

	// Consume propagated notifications.
	batchc := make(chan batch)

	go func() {
		err := consumeNotification(notificationSource, batchc, stop)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort")
			os.Exit(1)
		}
	}()

	// Distribute notifications to channels.
	cs := []channelFunc{
		channelPush(
			core.DeviceListUser(devices),
			core.DeviceSyncEndpoint(
				devices,
				platformSNS.EndpointCreate(snsAPI),
				platformSNS.EndpointRetrieve(snsAPI),
				platformSNS.EndpointUpdate(snsAPI),
			),
			platformSNS.Push(snsAPI),
			arns,
		),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			var b batch

			select {
			case <-stop:
				return
			case b = <-batchc:
			}

			for _, n := range b.notifications {
				for _, channel := range cs {
					err := channel(b.namespace, n)
					if err != nil {
						logger.Log("err", err, "lifecycle", "abort")
						os.Exit(1)
					}
				}
			}

			err := b.ackFunc()
			if err != nil {
				logger.Log("err", err, "lifecycle", "abort")
				os.Exit(1)
			}
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		*shutdownTimeout,
		map[string]gfshutdown.Operation{
			"worker": func(ctx context.Context) error {
				close(stop)

				done := make(chan struct{})

				go func() {
					wg.Wait()
					close(done)
				}()

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-done:
					return nil
				}
			},
		},
	)

	code := <-wait

	_ = pgClient.Close()

	logger.Log(
		"code", code,
		"duration", time.Since(begin).Nanoseconds(),
		"lifecycle", "stop",
	)

	os.Exit(code)
}
