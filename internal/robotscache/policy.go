package robotscache

import (
	"time"

	"github.com/Global19-atlassian-net/wayback/internal/config"
	"github.com/Global19-atlassian-net/wayback/internal/store"
	"github.com/Global19-atlassian-net/wayback/pkg/timeutil"
)

/*
FreshnessPolicy

Responsibilities:
- Pick the TTL budgets for a stored value based on what it represents
  (usable content vs. hard fetch failure)
- Decide when an entry has aged past its refresh threshold
- Apply the migration-period compatibility rule for legacy error tokens

This is a refresh-ahead design: entries are queued for refresh once their
age since last write crosses refreshTTL, well before the hard maxTTL
bound. maxTTL is only ever used to compute age; the store itself is
responsible for physically expiring an entry once its TTL reaches zero.
*/
type FreshnessPolicy struct {
	totalTTL           int
	refreshTTL         int
	notAvailTotalTTL   int
	notAvailRefreshTTL int

	migrationActive bool
	processStart    time.Time
	clock           timeutil.Clock
}

func NewFreshnessPolicy(cfg config.Config, clock timeutil.Clock) FreshnessPolicy {
	return FreshnessPolicy{
		totalTTL:           cfg.TotalTTL(),
		refreshTTL:         cfg.RefreshTTL(),
		notAvailTotalTTL:   cfg.NotAvailTotalTTL(),
		notAvailRefreshTTL: cfg.NotAvailRefreshTTL(),
		migrationActive:    cfg.MigrationPeriodActive(),
		processStart:       cfg.ProcessStart(),
		clock:              clock,
	}
}

// Classify returns the (maxTTL, refreshTTL) budgets for a stored value.
// Failure budgets apply only to error tokens in the hard-failure class;
// a cached 4xx is as long-lived as genuine content.
func (p *FreshnessPolicy) Classify(value store.StoredValue) (int, int) {
	parsed := ParseStored(value.Value())
	if parsed.Kind() == KindFailure && isFailedStatus(parsed.Status()) {
		return p.notAvailTotalTTL, p.notAvailRefreshTTL
	}
	return p.totalTTL, p.refreshTTL
}

// IsExpired reports whether the value's age since last write has crossed
// the refresh threshold. customRefreshSeconds > 0 overrides the
// classified refresh budget.
//
// Age is (maxTTL - ttlRemaining): the store counts the TTL down from the
// class's total budget, so the distance from the top is the entry's age.
func (p *FreshnessPolicy) IsExpired(value store.StoredValue, customRefreshSeconds int) bool {
	maxTime, refreshTime := p.Classify(value)

	if customRefreshSeconds > 0 {
		refreshTime = customRefreshSeconds
	}

	return (maxTime - value.TTLRemaining()) >= refreshTime
}

// TreatAsMiss applies the migration compatibility rule: while the
// migration period is active and this process is younger than refreshTTL,
// the legacy generic-error token is not trusted, because the previous
// cache generation recorded 404 as 502 and the new semantics would turn
// that into false blockage. The forced re-fetch is rate-limited by a
// fixed minimum re-update interval.
func (p *FreshnessPolicy) TreatAsMiss(value store.StoredValue) bool {
	if !p.migrationActive {
		return false
	}
	if value.Value() != legacyGenericErrorToken {
		return false
	}
	if (p.notAvailTotalTTL - value.TTLRemaining()) <= minUpdateIntervalSeconds {
		return false
	}
	elapsedSec := int(p.clock.Now().Sub(p.processStart) / time.Second)
	return elapsedSec < p.refreshTTL
}
