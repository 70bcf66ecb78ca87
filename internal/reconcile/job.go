package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/tripmind/quota-service/internal/metrics"
	"github.com/tripmind/quota-service/internal/report"
)

// Result — итог запуска задания, отдаётся планировщику как JSON.
type Result struct {
	Success               bool           `json:"success"`
	Message               string         `json:"message,omitempty"`
	Error                 string         `json:"error,omitempty"`
	UsersProcessed        int            `json:"usersProcessed"`
	UsersUpdated          int            `json:"usersUpdated"`
	UsersSkipped          int            `json:"usersSkipped"`
	UsersWithErrors       int            `json:"usersWithErrors"`
	BoostsExpired         int            `json:"boostsExpired"`
	BoostItinerariesSaved int            `json:"boostItinerariesSaved"`
	EmailSent             bool           `json:"emailSent"`
	Duration              string         `json:"duration"`
	Timestamp             time.Time      `json:"timestamp"`
	CurrentMonth          string         `json:"currentMonth"`
	Detailed              *report.Report `json:"detailed_results,omitempty"`
}

type ReportGenerator interface {
	Generate(ctx context.Context, cycle string) (*report.Report, error)
}

type ReportSender interface {
	SendReport(ctx context.Context, r *report.Report) error
}

type SummaryNotifier interface {
	NotifySummary(res Result) error
}

// Job последовательно гонит цикл: отчёт → реконсиляция → погашение грантов →
// рассылка. Отказ любой из первых трёх стадий валит задание целиком;
// рассылка — best-effort.
type Job struct {
	log      *slog.Logger
	reporter ReportGenerator
	engine   *Engine
	boosts   BoostStore
	email    ReportSender
	telegram SummaryNotifier
	metrics  *metrics.Metrics
	timeout  time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewJob(
	log *slog.Logger,
	reporter ReportGenerator,
	engine *Engine,
	boosts BoostStore,
	email ReportSender,
	telegram SummaryNotifier,
	m *metrics.Metrics,
	timeout time.Duration,
	loc *time.Location,
) *Job {
	if loc == nil {
		loc = time.UTC
	}
	return &Job{
		log:      log,
		reporter: reporter,
		engine:   engine,
		boosts:   boosts,
		email:    email,
		telegram: telegram,
		metrics:  m,
		timeout:  timeout,
		loc:      loc,
		now:      time.Now,
	}
}

func (j *Job) Run(ctx context.Context) Result {
	start := j.now()
	cycle := start.In(j.loc).Format("2006-01")

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	j.log.Info("reconciliation started", "cycle", cycle)

	// Снимок до мутаций — без него не начинаем.
	rep, err := j.reporter.Generate(ctx, cycle)
	if err != nil {
		j.log.Error("report generation failed", "cycle", cycle, "err", err)
		return j.fail(start, cycle, err)
	}

	batch, err := j.engine.Run(ctx, cycle)
	if err != nil {
		j.log.Error("reconciliation failed", "cycle", cycle, "err", err)
		return j.fail(start, cycle, err)
	}

	// Гасим гранты строго после всех пользовательских записей: расчёт
	// переноса исходит из того, что грант ещё активен.
	expired, err := j.boosts.ExpireBatch(ctx, batch.ExpireIDs, j.now().UTC())
	if err != nil {
		j.log.Error("boost expiry failed", "cycle", cycle, "ids", len(batch.ExpireIDs), "err", err)
		res := j.fail(start, cycle, err)
		res.UsersProcessed = batch.UsersProcessed
		res.UsersUpdated = batch.UsersUpdated
		res.UsersSkipped = batch.UsersSkipped
		res.UsersWithErrors = batch.UsersWithErrors
		return res
	}

	res := Result{
		Success:               true,
		Message:               "monthly quota reset completed",
		UsersProcessed:        batch.UsersProcessed,
		UsersUpdated:          batch.UsersUpdated,
		UsersSkipped:          batch.UsersSkipped,
		UsersWithErrors:       batch.UsersWithErrors,
		BoostsExpired:         int(expired),
		BoostItinerariesSaved: batch.BoostItinerariesSaved,
		Timestamp:             j.now(),
		CurrentMonth:          cycle,
		Detailed:              rep,
	}

	if j.email != nil {
		if err := j.email.SendReport(ctx, rep); err != nil {
			// Финансовое состояние уже изменено; письмо не роняет задание.
			j.log.Error("report email failed", "cycle", cycle, "err", err)
		} else {
			res.EmailSent = true
		}
	}

	res.Duration = j.now().Sub(start).Round(time.Millisecond).String()

	if j.telegram != nil {
		if err := j.telegram.NotifySummary(res); err != nil {
			j.log.Error("telegram summary failed", "cycle", cycle, "err", err)
		}
	}

	j.metrics.ObserveRun(true, res.UsersUpdated, res.UsersSkipped, res.UsersWithErrors,
		res.BoostsExpired, j.now().Sub(start).Seconds())

	j.log.Info("reconciliation finished",
		"cycle", cycle,
		"users_processed", res.UsersProcessed,
		"users_updated", res.UsersUpdated,
		"users_skipped", res.UsersSkipped,
		"users_with_errors", res.UsersWithErrors,
		"boosts_expired", res.BoostsExpired,
		"boost_itineraries_saved", res.BoostItinerariesSaved,
		"email_sent", res.EmailSent,
		"duration", res.Duration,
	)
	return res
}

func (j *Job) fail(start time.Time, cycle string, err error) Result {
	j.metrics.ObserveRun(false, 0, 0, 0, 0, j.now().Sub(start).Seconds())
	return Result{
		Success:      false,
		Error:        err.Error(),
		Timestamp:    j.now(),
		CurrentMonth: cycle,
		Duration:     j.now().Sub(start).Round(time.Millisecond).String(),
	}
}
