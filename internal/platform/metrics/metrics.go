package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prediction_league"

// Recorder holds the service counters on a private registry. A nil *Recorder
// drops every observation.
type Recorder struct {
	registry             *prometheus.Registry
	predictionsSubmitted prometheus.Counter
	resultsRecorded      prometheus.Counter
	rewardClaims         *prometheus.CounterVec
	leaderboardCache     *prometheus.CounterVec
	rateLimited          *prometheus.CounterVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		predictionsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_submitted_total",
			Help:      "Predictions accepted while the match was open.",
		}),
		resultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_recorded_total",
			Help:      "Official results recorded.",
		}),
		rewardClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_claims_total",
			Help:      "Reward claim attempts by outcome.",
		}, []string{"outcome"}),
		leaderboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_cache_total",
			Help:      "Leaderboard cache lookups by result.",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-user rate limiter.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.predictionsSubmitted,
		r.resultsRecorded,
		r.rewardClaims,
		r.leaderboardCache,
		r.rateLimited,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) PredictionSubmitted() {
	if r == nil {
		return
	}
	r.predictionsSubmitted.Inc()
}

func (r *Recorder) ResultRecorded() {
	if r == nil {
		return
	}
	r.resultsRecorded.Inc()
}

func (r *Recorder) RewardClaim(outcome string) {
	if r == nil {
		return
	}
	r.rewardClaims.WithLabelValues(outcome).Inc()
}

func (r *Recorder) LeaderboardCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.leaderboardCache.WithLabelValues(result).Inc()
}

func (r *Recorder) RateLimited(route string) {
	if r == nil {
		return
	}
	r.rateLimited.WithLabelValues(route).Inc()
}
