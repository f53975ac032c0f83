package insights

import (
	"fmt"
	"time"

	"cohortpulse/internal/stats"
	"cohortpulse/pkg/contracts/domain"
)

// ChartSuggestion recommends one chart kind for the loaded data.
type ChartSuggestion struct {
	Kind   domain.ChartKind `json:"kind"`
	Reason string           `json:"reason"`
}

// SuggestCharts recommends visualizations based on the shape of the
// data: how many days, participants, and metrics are in play.
func SuggestCharts(records []domain.DailyRecord, metrics []string) []ChartSuggestion {
	days := make(map[time.Time]bool)
	participants := make(map[string]bool)
	for _, rec := range records {
		days[rec.Date] = true
		participants[rec.ParticipantID] = true
	}

	var suggestions []ChartSuggestion
	if len(days) > 7 {
		suggestions = append(suggestions, ChartSuggestion{
			Kind:   domain.ChartLine,
			Reason: "More than a week of data suits a time-series view.",
		})
	}
	if len(participants) >= 2 {
		suggestions = append(suggestions, ChartSuggestion{
			Kind:   domain.ChartBox,
			Reason: "Multiple participants can be compared with distribution boxes.",
		})
	}
	if len(metrics) >= 2 {
		suggestions = append(suggestions, ChartSuggestion{
			Kind:   domain.ChartScatter,
			Reason: "Two or more metrics can be plotted against each other.",
		})
	}
	if len(days) > 14 {
		suggestions = append(suggestions, ChartSuggestion{
			Kind:   domain.ChartHeatmap,
			Reason: "Over two weeks of data reveals weekly patterns in a heatmap.",
		})
	}
	return suggestions
}

// Anomaly flags one notable pattern in a participant's data.
type Anomaly struct {
	ParticipantID string `json:"participant_id"`
	Kind          string `json:"kind"`
	Detail        string `json:"detail"`
}

const (
	// AnomalyDecliningSleep marks a first-half to second-half drop in
	// mean sleep duration of more than 30 minutes.
	AnomalyDecliningSleep = "declining-sleep"
	// AnomalyIrregularSleep marks a nightly sleep standard deviation
	// above 80 minutes.
	AnomalyIrregularSleep = "irregular-sleep"
	// AnomalyHeartRateOutliers marks more than two days above the
	// participant's mean resting heart rate plus two deviations.
	AnomalyHeartRateOutliers = "heart-rate-outliers"
)

// DetectAnomalies scans each participant's records for the three
// tracked patterns.
func DetectAnomalies(records []domain.DailyRecord) []Anomaly {
	byParticipant := make(map[string][]domain.DailyRecord)
	var order []string
	for _, rec := range records {
		if _, seen := byParticipant[rec.ParticipantID]; !seen {
			order = append(order, rec.ParticipantID)
		}
		byParticipant[rec.ParticipantID] = append(byParticipant[rec.ParticipantID], rec)
	}

	var anomalies []Anomaly
	for _, id := range order {
		recs := byParticipant[id]
		domain.SortByDate(recs)
		anomalies = append(anomalies, detectForParticipant(id, recs)...)
	}
	return anomalies
}

func detectForParticipant(participantID string, records []domain.DailyRecord) []Anomaly {
	var anomalies []Anomaly

	sleep := domain.MetricValues(records, "minutesAsleep")
	if len(records) > 14 && len(sleep) >= 4 {
		half := len(sleep) / 2
		firstMean := stats.Mean(sleep[:half])
		secondMean := stats.Mean(sleep[half:])
		if drop := firstMean - secondMean; drop > 30 {
			anomalies = append(anomalies, Anomaly{
				ParticipantID: participantID,
				Kind:          AnomalyDecliningSleep,
				Detail: fmt.Sprintf("Mean sleep dropped %.0f minutes between the first and second half of the period.",
					drop),
			})
		}
	}

	if len(sleep) >= 2 {
		if sd := stats.StdDev(sleep); sd > 80 {
			anomalies = append(anomalies, Anomaly{
				ParticipantID: participantID,
				Kind:          AnomalyIrregularSleep,
				Detail:        fmt.Sprintf("Nightly sleep varies by %.0f minutes (standard deviation).", sd),
			})
		}
	}

	hr := domain.MetricValues(records, "heart_rate")
	if len(hr) >= 4 {
		mean := stats.Mean(hr)
		cutoff := mean + 2*stats.StdDev(hr)
		outliers := 0
		for _, v := range hr {
			if v > cutoff {
				outliers++
			}
		}
		if outliers > 2 {
			anomalies = append(anomalies, Anomaly{
				ParticipantID: participantID,
				Kind:          AnomalyHeartRateOutliers,
				Detail: fmt.Sprintf("%d days with resting heart rate above %.0f BPM (mean plus two deviations).",
					outliers, cutoff),
			})
		}
	}

	return anomalies
}
