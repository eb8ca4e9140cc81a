package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls gorm query spans
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables; development only
	SlowQueryThresh time.Duration
	DBName          string
}

// DefaultDBTracingConfig returns secure defaults for database tracing
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "property_flow",
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// DBTracingPlugin registers otelgorm plus callbacks that flag slow and
// failed queries on the current span.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a database tracing plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs the plugin on db. It does nothing when disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	// Callbacks go in first so they run before otelgorm ends its span.
	if err := p.registerCallbacks(db); err != nil {
		return err
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm: %w", err)
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartTimeKey, time.Now())
		}
	}

	cb := db.Callback()
	type registration struct {
		op     string
		before error
		after  error
	}
	results := []registration{
		{"create",
			cb.Create().Before("gorm:create").Register("otel_timing:before_create", before),
			cb.Create().After("gorm:create").Register("otel_slow_query:create", p.afterQuery)},
		{"query",
			cb.Query().Before("gorm:query").Register("otel_timing:before_query", before),
			cb.Query().After("gorm:query").Register("otel_slow_query:query", p.afterQuery)},
		{"update",
			cb.Update().Before("gorm:update").Register("otel_timing:before_update", before),
			cb.Update().After("gorm:update").Register("otel_slow_query:update", p.afterQuery)},
		{"delete",
			cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", before),
			cb.Delete().After("gorm:delete").Register("otel_slow_query:delete", p.afterQuery)},
		{"row",
			cb.Row().Before("gorm:row").Register("otel_timing:before_row", before),
			cb.Row().After("gorm:row").Register("otel_slow_query:row", p.afterQuery)},
		{"raw",
			cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", before),
			cb.Raw().After("gorm:raw").Register("otel_slow_query:raw", p.afterQuery)},
	}
	for _, r := range results {
		if err := errors.Join(r.before, r.after); err != nil {
			return fmt.Errorf("failed to register %s tracing callbacks: %w", r.op, err)
		}
	}
	return nil
}

// afterQuery annotates the span started by otelgorm
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}
