// Package charts renders the pipeline's figures with gonum/plot: annotated
// heatmaps, grouped and sorted bar charts with an optional limit line, and
// box plots on a linear or log axis. WritePNG rasterises a plot at the
// configured size and DPI.
package charts
