/*
Package observability provides Prometheus instrumentation for the ErgoWeb
pipeline.

It defines the metric set for generation runs, downloads, and panel
activity, and adapts it to the workspace's lifecycle hooks so the core
stays free of metrics dependencies.
*/
package observability
