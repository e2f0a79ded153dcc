// Package plsync keeps managed prefix lists synchronized with the private
// addresses attached to their bound security groups.
package plsync

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog"

	internalaws "github.com/gllesch/plsync/internal/aws"
	"github.com/gllesch/plsync/internal/config"
	"github.com/gllesch/plsync/internal/domain"
	"github.com/gllesch/plsync/internal/engine"
	"github.com/gllesch/plsync/internal/logging"
	"github.com/gllesch/plsync/internal/notify"
	"github.com/gllesch/plsync/internal/registry"
	"github.com/gllesch/plsync/internal/scheduler"
)

// Binding re-exports the registry record type for callers of the facade.
type Binding = domain.Binding

// ReconciliationResult re-exports the per-binding outcome.
type ReconciliationResult = domain.ReconciliationResult

// AggregateResult re-exports the fan-out summary.
type AggregateResult = domain.AggregateResult

// Syncer wires the engine, registry, notifier and scheduler into one object
// graph built from environment configuration and the default AWS credential
// chain.
type Syncer struct {
	cfg       *config.Config
	log       zerolog.Logger
	engine    *engine.Engine
	registry  *registry.DynamoDB
	scheduler *scheduler.Scheduler
}

func New(ctx context.Context) (*Syncer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	pool := internalaws.NewClientPool(awsCfg)
	provider := internalaws.NewProvider(pool, internalaws.ProviderConfig{
		QuotaServiceCode: cfg.Quota.ServiceCode,
		RuleQuotaCode:    cfg.Quota.RuleQuotaCode,
	})
	notifier := notify.NewSNS(awsCfg, cfg.Notify.TopicARN, log)
	eng := engine.New(provider, notifier, engine.Config{
		MaxModifyAttempts:       cfg.Sync.MaxModifyAttempts,
		BackoffBase:             cfg.Sync.BackoffBase,
		BackoffCap:              cfg.Sync.BackoffCap,
		DefaultPercentThreshold: cfg.Quota.DefaultPercentThreshold,
		DefaultBaseThreshold:    cfg.Quota.DefaultBaseThreshold,
	}, log)
	reg := registry.New(awsCfg, cfg.Registry.Table)

	return &Syncer{
		cfg:       cfg,
		log:       log,
		engine:    eng,
		registry:  reg,
		scheduler: scheduler.New(reg, eng, notifier, cfg.Scheduler.WorkerLimit, log),
	}, nil
}

// Config exposes the loaded configuration (the serve command needs the
// schedule and run timeout).
func (s *Syncer) Config() *config.Config {
	return s.cfg
}

// Logger exposes the shared logger.
func (s *Syncer) Logger() zerolog.Logger {
	return s.log
}

// Reconcile looks one binding up by security group id and synchronizes it.
func (s *Syncer) Reconcile(ctx context.Context, securityGroupID string) (ReconciliationResult, error) {
	binding, err := s.registry.Get(ctx, securityGroupID)
	if err != nil {
		return ReconciliationResult{}, err
	}
	return s.engine.Reconcile(ctx, binding), nil
}

// RunAll reconciles every onboarded binding.
func (s *Syncer) RunAll(ctx context.Context) AggregateResult {
	return s.scheduler.RunAll(ctx)
}

// Onboard validates and registers a binding, then triggers its initial sync.
func (s *Syncer) Onboard(ctx context.Context, b Binding) (ReconciliationResult, error) {
	if b.SecurityGroupRegion == "" {
		b.SecurityGroupRegion = s.cfg.Region
	}
	if b.PrefixListRegion == "" {
		b.PrefixListRegion = s.cfg.Region
	}
	if err := b.Validate(); err != nil {
		return ReconciliationResult{}, err
	}
	if err := s.registry.Put(ctx, b); err != nil {
		return ReconciliationResult{}, err
	}
	return s.engine.Reconcile(ctx, b), nil
}
