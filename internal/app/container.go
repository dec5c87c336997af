package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/strogmv/claimcomms/internal/adapter/cache/redis"
	contactshttp "github.com/strogmv/claimcomms/internal/adapter/contacts/http"
	"github.com/strogmv/claimcomms/internal/adapter/events/nats"
	"github.com/strogmv/claimcomms/internal/adapter/notifications"
	"github.com/strogmv/claimcomms/internal/adapter/storage/s3"
	"github.com/strogmv/claimcomms/internal/bootstrap"
	"github.com/strogmv/claimcomms/internal/config"
	"github.com/strogmv/claimcomms/internal/port"
	"github.com/strogmv/claimcomms/internal/service"
	"github.com/strogmv/claimcomms/internal/transport/events"
	transporthttp "github.com/strogmv/claimcomms/internal/transport/http"
)

// Collaborators are the outside-world adapters the engine is built from.
type Collaborators struct {
	Ledger   port.Ledger
	Locker   port.KeyLocker
	Channel  port.CommsChannel
	Contacts port.ContactResolver
	Blobs    port.BlobStore
}

// Engine is the routing and dispatch core wired to its collaborators.
type Engine struct {
	Dispatcher *notifications.Dispatcher
	Router     *service.Router
	Consumer   *events.Consumer
}

// Wire builds the engine. It performs no I/O.
func Wire(cfg *config.Config, c Collaborators) *Engine {
	dispatcher := notifications.NewDispatcher(c.Channel, cfg.OutboundEventType)
	deps := service.Deps{
		Ledger:     c.Ledger,
		Locker:     c.Locker,
		Contacts:   c.Contacts,
		Dispatcher: dispatcher,
		Blobs:      c.Blobs,
		Notify:     NotifySettings(cfg.Notify),
	}
	router := service.NewRouter(
		service.EventTypes{
			AgreementCreated: cfg.InboundDocumentCreated,
			StatusUpdate:     cfg.InboundStatusUpdate,
			ReminderRequest:  cfg.InboundReminderRequest,
		},
		service.NewAgreementProcessor(deps),
		service.NewClaimProcessor(deps),
		service.NewEvidenceProcessor(deps, cfg.EvidenceEmailEnabled),
		service.NewReminderProcessor(deps, cfg.ReminderEmailEnabled),
	)
	return &Engine{
		Dispatcher: dispatcher,
		Router:     router,
		Consumer:   events.NewConsumer(router),
	}
}

// NotifySettings maps configuration onto processor settings.
func NotifySettings(n config.Notify) service.NotifySettings {
	return service.NotifySettings{
		Templates: service.Templates{
			NewReviewClaim:        n.NewReviewClaimTemplateID,
			NewFollowUpClaim:      n.NewFollowUpClaimTemplateID,
			EvidenceReview:        n.EvidenceReviewTemplateID,
			EvidenceFollowUp:      n.EvidenceFollowUpTemplateID,
			ReminderNotClaimed:    n.ReminderNotClaimedTemplateID,
			NewUserAgreement:      n.NewUserAgreementTemplateID,
			ExistingUserAgreement: n.ExistingUserAgreementTemplateID,
		},
		ReplyToID:                 n.ReplyToID,
		NoReplyReplyToID:          n.ReplyToIDNoReply,
		CarbonCopyAddress:         n.CarbonCopyEmailAddress,
		EvidenceCarbonCopyAddress: n.EvidenceCarbonCopyEmailAddress,
	}
}

// Container owns every connection the service opens.
type Container struct {
	Config *config.Config
	Ledger *bootstrap.LedgerHandle
	NATS   *nats.Client
	Engine *Engine
	Admin  http.Handler

	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	ledger, err := bootstrap.OpenLedger(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Ledger = ledger
	c.closers = append(c.closers, ledger.Close)
	if err := ledger.Migrate(ctx); err != nil {
		c.Close()
		return nil, err
	}

	var locker port.KeyLocker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		if err := redis.Ping(ctx, rdb); err != nil {
			c.Close()
			return nil, err
		}
		locker = redis.NewLeaseLocker(rdb, "claimcomms:lease:", cfg.LeaseTTL)
	}

	nc, err := nats.NewClient(cfg.NATSURL, cfg.ServiceName, cfg.OutboundSubject)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.NATS = nc
	c.closers = append(c.closers, nc.Close)
	if err := nc.EnsureStream(cfg.NATSStream, cfg.InboundSubject, cfg.OutboundSubject); err != nil {
		c.Close()
		return nil, err
	}

	blobs, err := s3.New(ctx, s3.Options{
		Region:         cfg.AWSRegion,
		Bucket:         cfg.DocumentBucket,
		Endpoint:       cfg.AWSEndpointURL,
		ForcePathStyle: cfg.ForcePathStyle,
	})
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Engine = Wire(cfg, Collaborators{
		Ledger:   ledger.Ledger,
		Locker:   locker,
		Channel:  nc,
		Contacts: contactshttp.NewClient(cfg.ApplicationAPIURI, cfg.MessageGeneratorAPIKey, cfg.ApplicationAPITimeout),
		Blobs:    blobs,
	})

	if len(cfg.AdminAPIKeys()) == 0 {
		slog.Warn("no admin api keys configured, every /api request will be refused")
	}
	c.Admin = transporthttp.NewRouter(ledger.Ledger, transporthttp.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		APIKeys:        cfg.AdminAPIKeys(),
		ExposeMetrics:  cfg.MetricsEnabled,
		Health: map[string]transporthttp.HealthChecker{
			"nats": func() error {
				if !nc.IsConnected() {
					return errors.New("not connected")
				}
				return nil
			},
			"ledger": func() error { return ledger.Ping(context.Background()) },
		},
	})
	return c, nil
}

// Consume subscribes the engine to inbound events until ctx is done.
func (c *Container) Consume(ctx context.Context) error {
	sub, err := c.NATS.Consume(ctx, nats.ConsumeOptions{
		Subject:    c.Config.InboundSubject,
		Queue:      c.Config.InboundQueue,
		AckWait:    c.Config.AckWait,
		MaxDeliver: c.Config.MaxDeliver,
	}, c.Engine.Consumer.Handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.Config.InboundSubject, err)
	}
	slog.Info("consuming events", "subject", c.Config.InboundSubject, "queue", c.Config.InboundQueue)

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		slog.Warn("drain subscription", "error", err)
	}
	return nil
}

// Close releases connections in reverse order of opening.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
