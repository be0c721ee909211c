package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// syncOutcomes — итоги попыток синхронизации по статусу и категории.
	syncOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stash_sync_outcomes_total",
			Help: "Итоги синхронизации файлов с удалённым хранилищем",
		},
		[]string{"status", "category"},
	)

	ingestedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stash_ingested_bytes_total",
		Help: "Объём принятых файлов, байт",
	})

	rejectedFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stash_rejected_files_total",
			Help: "Файлы, отклонённые при приёме",
		},
		[]string{"reason"},
	)
)
