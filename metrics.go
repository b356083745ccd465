package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pipelineRejections counts requests terminated by a pipeline stage before
// they reached the CRUD handlers, labelled by the stage that rejected them.
var pipelineRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "posts_pipeline_rejections_total",
	Help: "Requests rejected by the posts pipeline, by stage.",
}, []string{"stage"})
