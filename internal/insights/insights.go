package insights

import (
	"fmt"

	"cohortpulse/internal/config"
	"cohortpulse/internal/stats"
	"cohortpulse/pkg/contracts/domain"
)

// highMissingPercent is the missingness level worth calling out in the
// data-quality section.
const highMissingPercent = 20.0

// ParticipantReport is the narrative summary of one participant's data.
type ParticipantReport struct {
	ParticipantID      string        `json:"participant_id"`
	Cohort             domain.Cohort `json:"cohort"`
	Overview           string        `json:"overview"`
	Sleep              []string      `json:"sleep"`
	Activity           []string      `json:"activity"`
	Cardiovascular     []string      `json:"cardiovascular"`
	DataQuality        []string      `json:"data_quality"`
	FollowUps          []string      `json:"follow_ups"`
	ClinicallyRelevant bool          `json:"clinically_relevant"`
}

// BuildParticipantReport writes the narrative for one participant's
// records. Sections a participant has no data for come back empty.
func BuildParticipantReport(participantID string, cohort domain.Cohort, records []domain.DailyRecord) ParticipantReport {
	report := ParticipantReport{
		ParticipantID:  participantID,
		Cohort:         cohort,
		Sleep:          []string{},
		Activity:       []string{},
		Cardiovascular: []string{},
		DataQuality:    []string{},
		FollowUps:      []string{},
	}
	if len(records) == 0 {
		report.Overview = fmt.Sprintf("No data available for participant %s.", participantID)
		return report
	}

	domain.SortByDate(records)
	report.Overview = fmt.Sprintf("Participant %s (%s cohort): %d days of data from %s to %s.",
		participantID, cohort, len(records),
		records[0].Date.Format("2006-01-02"),
		records[len(records)-1].Date.Format("2006-01-02"))

	flag := func(label string) {
		if concerningLabels[label] {
			report.ClinicallyRelevant = true
		}
	}

	sleep := domain.MetricValues(records, "minutesAsleep")
	if len(sleep) > 0 {
		hours := stats.Mean(sleep) / 60
		b := classifyLow(hours, sleepBands[cohort])
		report.Sleep = append(report.Sleep,
			fmt.Sprintf("Average sleep duration is %.1f hours per night, %s.", hours, b.Text))
		flag(b.Label)
		if b.Label == "below-recommended" || b.Label == "below-expected" {
			report.FollowUps = append(report.FollowUps,
				"Review sleep hygiene and consider a sleep-focused check-in.")
		}

		if len(sleep) >= 2 {
			v := classifyHigh(stats.StdDev(sleep), sleepVariabilityBands)
			report.Sleep = append(report.Sleep,
				fmt.Sprintf("Night-to-night variation shows %s.", v.Text))
			flag(v.Label)
			if v.Label == "high" {
				report.FollowUps = append(report.FollowUps,
					"High sleep variability: ask about schedule disruptions.")
			}
		}
	}

	if eff := domain.MetricValues(records, "efficiency"); len(eff) > 0 {
		report.Sleep = append(report.Sleep,
			fmt.Sprintf("Mean sleep efficiency is %.1f%%.", stats.Mean(eff)))
	}

	if steps := domain.MetricValues(records, "steps"); len(steps) > 0 {
		mean := stats.Mean(steps)
		b := classifyLow(mean, stepsBands)
		report.Activity = append(report.Activity,
			fmt.Sprintf("Average daily step count is %.0f, %s.", mean, b.Text))
		flag(b.Label)
		if b.Label == "below" {
			report.FollowUps = append(report.FollowUps,
				"Low activity level: consider discussing daily movement goals.")
		}
	}

	if hr := domain.MetricValues(records, "heart_rate"); len(hr) > 0 {
		mean := stats.Mean(hr)
		b := classifyHigh(mean, heartRateBands)
		report.Cardiovascular = append(report.Cardiovascular,
			fmt.Sprintf("Average resting heart rate is %.0f BPM, %s.", mean, b.Text))
		flag(b.Label)
		if b.Label == "elevated" {
			report.FollowUps = append(report.FollowUps,
				"Elevated resting heart rate: flag for cardiovascular review.")
		}
	}

	if spo2 := domain.MetricValues(records, "spo2"); len(spo2) > 0 {
		report.Cardiovascular = append(report.Cardiovascular,
			fmt.Sprintf("Average blood oxygen saturation is %.1f%%.", stats.Mean(spo2)))
	}

	for _, metric := range config.AvailableMetrics {
		summary := stats.Describe(records, metric)
		if summary.Count > 0 && summary.MissingPercent > highMissingPercent {
			report.DataQuality = append(report.DataQuality,
				fmt.Sprintf("%s is missing on %.0f%% of days; interpret with caution.",
					config.MetricLabels[metric], summary.MissingPercent))
		}
	}

	return report
}

// ComparisonReport is the narrative companion to a two-cohort
// statistical comparison.
type ComparisonReport struct {
	Headline string   `json:"headline"`
	Findings []string `json:"findings"`
	Summary  string   `json:"summary"`
}

// BuildComparisonReport narrates a comparison result, adding the
// sleep-efficiency gap assessment when efficiency was tested.
func BuildComparisonReport(result domain.ComparisonResult) ComparisonReport {
	report := ComparisonReport{Findings: []string{}}

	if result.Summary.TotalMetrics == 0 {
		report.Headline = "Not enough overlapping data to compare the cohorts."
		report.Summary = "No metric had at least three observations in both groups."
		return report
	}

	report.Headline = fmt.Sprintf("Compared %d metrics between the clinical and control cohorts.",
		result.Summary.TotalMetrics)

	for _, cmp := range result.Metrics {
		label := config.MetricLabels[cmp.Metric]
		if label == "" {
			label = cmp.Metric
		}
		if cmp.Significant {
			direction := "higher"
			if cmp.Difference < 0 {
				direction = "lower"
			}
			report.Findings = append(report.Findings,
				fmt.Sprintf("%s is significantly %s in the clinical group (%.1f vs %.1f, p=%.3f, %s effect).",
					label, direction, cmp.ClinicalMean, cmp.ControlMean, cmp.PValue, cmp.EffectSize))
		}

		if cmp.Metric == "efficiency" {
			gap := classifyHigh(cmp.ControlMean-cmp.ClinicalMean, efficiencyGapBands)
			report.Findings = append(report.Findings,
				fmt.Sprintf("The groups show %s.", gap.Text))
		}
	}

	report.Summary = fmt.Sprintf("%d of %d metrics differ significantly (%.0f%%).",
		result.Summary.SignificantCount, result.Summary.TotalMetrics,
		result.Summary.PercentSignificant)
	return report
}
