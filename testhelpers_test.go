//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bookora/service-marketplace/internal/application"
	bookingDomain "github.com/bookora/service-marketplace/internal/domain/booking"
	bookingEvents "github.com/bookora/service-marketplace/internal/events"
	"github.com/bookora/service-marketplace/internal/payment"
	"github.com/bookora/service-marketplace/internal/repository"
	"github.com/bookora/service-marketplace/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// marketplaceStack holds wired-up booking service components.
type marketplaceStack struct {
	Service         *application.BookingService
	Consumer        *bookingEvents.PaymentEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_marketplace",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_marketplace sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.BookingModel{}, &repository.ServiceModel{}))
	require.NoError(t, repository.EnsureSlotExclusionConstraint(db))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, application.TopicBookingEvents, application.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupMarketplaceStack wires up the full booking service stack.
func setupMarketplaceStack(t *testing.T, db *gorm.DB, brokers []string) *marketplaceStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	producer := kafka.NewProducer(brokers, logger)

	processor, err := payment.NewProcessor(payment.Config{
		Gateway:       "razorpay",
		KeyID:         "rzp_test",
		KeySecret:     "test-secret",
		WebhookSecret: "whsec-test",
	})
	require.NoError(t, err)

	bookingSvc := application.NewBookingService(
		bookingRepo,
		serviceRepo,
		bookingDomain.NewAvailabilityChecker(bookingRepo),
		bookingDomain.CancellationPolicy{Lenient: true},
		bookingDomain.SystemClock{},
		processor,
		producer,
		logger,
	)

	groupID := fmt.Sprintf("test-marketplace-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewPaymentEventConsumer(brokers, groupID, bookingSvc, logger)

	return &marketplaceStack{
		Service:         bookingSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedActiveService inserts an active hourly service and returns its id and provider id.
func seedActiveService(t *testing.T, db *gorm.DB, unitPrice float64) (uuid.UUID, uuid.UUID) {
	t.Helper()
	providerID := uuid.New()
	serviceID := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO services (id, provider_id, name, description, price_type, unit_price, currency, active, rating_average, rating_count, created_at, updated_at)
		 VALUES (?, ?, 'Lawn mowing', '', 'hourly', ?, 'USD', true, 0, 0, ?, ?)`,
		serviceID, providerID, unitPrice, now, now,
	).Error)
	return serviceID, providerID
}

// seedPendingBooking inserts a pending, payment-pending booking.
func seedPendingBooking(t *testing.T, db *gorm.DB, bookingID, userID, serviceID, providerID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	date := now.Add(72 * time.Hour).Truncate(24 * time.Hour)

	model := repository.BookingModel{
		ID:            bookingID,
		UserID:        userID,
		ServiceID:     serviceID,
		ProviderID:    providerID,
		BookingDate:   date,
		StartTime:     "10:00",
		EndTime:       "12:00",
		Duration:      2,
		Status:        "pending",
		TotalAmount:   100,
		Currency:      "USD",
		PaymentStatus: "pending",
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPaymentStatus polls the bookings table until the payment status matches.
func waitForPaymentStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expected string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.PaymentStatus == expected {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking payment status did not become %s", expected)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
