package report

import (
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"medcouncil/internal/stats"
)

func (w *Writer) writeCharts(dir string, agg *stats.Aggregator) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		accuracyChart(agg),
		consensusChart(agg),
		timeChart(agg),
	)

	f, err := os.Create(filepath.Join(dir, chartsFile))
	if err != nil {
		return err
	}
	if err := page.Render(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func accuracyChart(agg *stats.Aggregator) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Precision por modelo"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Max: 100}),
	)

	perModel := agg.PerModel()
	names := modelOrder(perModel)
	data := make([]opts.BarData, 0, len(names))
	for _, name := range names {
		data = append(data, opts.BarData{Value: perModel[name].Accuracy()})
	}
	bar.SetXAxis(names)
	bar.AddSeries("Precision", data)
	return bar
}

func consensusChart(agg *stats.Aggregator) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Consenso entre consejeros"}),
	)

	consensus := agg.Consensus()
	buckets := []stats.Bucket{stats.BucketFull, stats.BucketPartial, stats.BucketNone}
	labels := make([]string, 0, len(buckets))
	counts := make([]opts.BarData, 0, len(buckets))
	correct := make([]opts.BarData, 0, len(buckets))
	for _, bucket := range buckets {
		bs := consensus[bucket]
		labels = append(labels, bucketLabel(bucket))
		counts = append(counts, opts.BarData{Value: bs.Count})
		correct = append(correct, opts.BarData{Value: bs.Correct})
	}
	bar.SetXAxis(labels)
	bar.AddSeries("Preguntas", counts)
	bar.AddSeries("Decision correcta", correct)
	return bar
}

func timeChart(agg *stats.Aggregator) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Tiempo medio por pregunta"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "s"}),
	)

	perModel := agg.PerModel()
	names := modelOrder(perModel)
	data := make([]opts.BarData, 0, len(names))
	for _, name := range names {
		data = append(data, opts.BarData{Value: perModel[name].AvgTime().Seconds()})
	}
	bar.SetXAxis(names)
	bar.AddSeries("Tiempo medio", data)
	return bar
}
