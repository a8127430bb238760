package montecarlo

// HistogramMode exposes histogramMode for tests
var HistogramMode = histogramMode
