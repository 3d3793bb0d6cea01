//nolint:gochecknoglobals
package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invitationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valentine",
		Name:      "invitations_created_total",
		Help:      "The total number of invitations created",
	}, []string{"backend"})

	invitationLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "valentine",
		Name:      "invitation_lookups_total",
		Help:      "The total number of invitation page lookups",
	}, []string{"result"})

	storeUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "valentine",
		Name:      "store_up",
		Help:      "1 if the last health check reached the invitation store",
	})
)
