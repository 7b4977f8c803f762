package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"medcouncil/internal/stats"
)

// buildSummary renders the markdown run summary. Section order follows the
// operator's reading order: headline numbers, per-model table, consensus,
// hardest questions.
func buildSummary(agg *stats.Aggregator) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Resumen de la ejecucion\n\n")
	fmt.Fprintf(&b, "- Fecha: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Preguntas procesadas: %d\n", agg.TotalQuestions())
	fmt.Fprintf(&b, "- Respuestas correctas: %d\n", agg.CorrectAnswers())
	fmt.Fprintf(&b, "- Precision global: %.2f%%\n", agg.GlobalAccuracy())
	fmt.Fprintf(&b, "- Duracion: %s\n\n", agg.Elapsed().Round(time.Second))

	b.WriteString("## Precision por modelo\n\n")
	b.WriteString("| Modelo | Correctas | Total | Precision | Tiempo medio |\n")
	b.WriteString("|--------|-----------|-------|-----------|-------------|\n")
	perModel := agg.PerModel()
	for _, name := range modelOrder(perModel) {
		ms := perModel[name]
		fmt.Fprintf(&b, "| %s | %d | %d | %.2f%% | %s |\n",
			name, ms.Correct, ms.Total, ms.Accuracy(), ms.AvgTime().Round(time.Millisecond))
	}
	b.WriteString("\n")

	b.WriteString("## Consenso entre consejeros\n\n")
	b.WriteString("| Consenso | Preguntas | Precision de la decision |\n")
	b.WriteString("|----------|-----------|--------------------------|\n")
	consensus := agg.Consensus()
	for _, bucket := range []stats.Bucket{stats.BucketFull, stats.BucketPartial, stats.BucketNone} {
		bs := consensus[bucket]
		fmt.Fprintf(&b, "| %s | %d | %.2f%% |\n", bucketLabel(bucket), bs.Count, bs.Accuracy())
	}
	b.WriteString("\n")

	difficult := agg.DifficultQuestions(stats.DifficultLimit)
	if len(difficult) > 0 {
		b.WriteString("## Preguntas mas dificiles\n\n")
		b.WriteString("| Pregunta | Modelos acertados | Total de modelos |\n")
		b.WriteString("|----------|-------------------|------------------|\n")
		for _, dq := range difficult {
			fmt.Fprintf(&b, "| %d | %d | %d |\n", dq.QuestionID, dq.CorrectModels, dq.TotalModels)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// modelOrder sorts model names with the decision entry last.
func modelOrder(perModel map[string]stats.ModelStats) []string {
	names := make([]string, 0, len(perModel))
	for name := range perModel {
		if name != stats.DecisionKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := perModel[stats.DecisionKey]; ok {
		names = append(names, stats.DecisionKey)
	}
	return names
}

func bucketLabel(b stats.Bucket) string {
	switch b {
	case stats.BucketFull:
		return "Total"
	case stats.BucketPartial:
		return "Parcial"
	case stats.BucketNone:
		return "Sin consenso"
	default:
		return string(b)
	}
}
