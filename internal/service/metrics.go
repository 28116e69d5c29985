package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	shiftsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_shifts_opened_total",
		Help: "Shifts opened.",
	})
	shiftsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_shifts_closed_total",
		Help: "Shifts closed with a cash count.",
	})
	shiftVariance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_shift_variance_minor",
		Help:    "Physical minus expected cash at close, in minor units.",
		Buckets: []float64{-10000, -1000, -100, -1, 0, 1, 100, 1000, 10000},
	})
	heldOrderOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_held_orders_total",
		Help: "Held order operations by kind.",
	}, []string{"op"})
	salesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_total",
		Help: "Paid sales recorded by payment method.",
	}, []string{"method"})
)
