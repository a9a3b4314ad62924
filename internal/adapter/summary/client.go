package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/agriscope/et-insight-service/internal/domain"
	"github.com/agriscope/et-insight-service/internal/observability"
)

const systemPrompt = "You are a neutral agricultural data analyst providing observational summaries " +
	"for conservation verification. You never make determinations or compliance judgments."

// Client implements domain.Summarizer using an OpenAI-compatible chat API.
type Client struct {
	api     *openai.Client
	model   string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a narrative summarizer. baseURL may be empty to use the
// standard OpenAI endpoint; any OpenAI-compatible gateway works.
func NewClient(apiKey, baseURL, model string, logger *slog.Logger, metrics *observability.Metrics) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		logger:  logger,
		metrics: metrics,
	}
}

// Summarize asks the model for the four narrative sections and parses the
// structured response. The narrative is supporting context only, so the
// prompt forbids thresholds, pass/fail language, and compliance statements.
func (c *Client) Summarize(ctx context.Context, report domain.Report) (domain.TextSummary, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(report)},
		},
	})
	if err != nil {
		c.countRequest("error")
		return domain.TextSummary{}, domain.NewError(domain.KindSummarizerUnavailable,
			fmt.Errorf("chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		c.countRequest("error")
		return domain.TextSummary{}, domain.NewError(domain.KindSummarizerUnavailable,
			fmt.Errorf("chat completion returned no choices"))
	}

	c.countRequest("success")
	return parseSections(resp.Choices[0].Message.Content), nil
}

func (c *Client) countRequest(outcome string) {
	if c.metrics != nil {
		c.metrics.SummaryRequests.WithLabelValues(outcome).Inc()
	}
}

func buildPrompt(report domain.Report) string {
	return fmt.Sprintf(`You are analyzing Earth observation data for agricultural conservation verification.
Your role is to provide supporting context ONLY - not make determinations or judgments.

Earth Observation Data Summary:
%s

Based on this data, provide three brief summaries (2-3 sentences each):

1. TREND CONSISTENCY: Describe observable vegetation, water use, or land cover patterns over time.
   Do NOT include thresholds, pass/fail language, or compliance statements.

2. TIMING ALIGNMENT: Describe when key events occurred (planting, cover crops, irrigation) compared to reported dates.
   Do NOT judge if timing was "correct" or "compliant".

3. CONTINUITY OVER TIME: Describe multi-year patterns showing practice persistence or rotation sequences.
   Do NOT make determinations about whether practices were "successful".

4. OVERALL SUMMARY: A brief 2-3 sentence summary of all observations.

Important: These summaries are SUPPORTING DOCUMENTATION ONLY. All determinations remain with the reviewing conservationists.
Use neutral, observational language. Focus on "what was observed" not "what should have been".

Format your response as:

TREND_CONSISTENCY: [your analysis]

TIMING_ALIGNMENT: [your analysis]

CONTINUITY_OVER_TIME: [your analysis]

OVERALL_SUMMARY: [your summary]
`, buildDataSummary(report))
}

// buildDataSummary condenses the report into the plain-text block the model
// sees. Raw observation arrays are included so the model can reason about
// month-to-month timing, not just the aggregates.
func buildDataSummary(report domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "NDVI Data:\n- NDVI Mean: %s\n- Data points: %s\n\n",
		formatMean(report.NDVI), formatObservations(report.NDVI.Observations))
	fmt.Fprintf(&b, "ET Data:\n- ET Mean: %s\n- Data points: %s\n\n",
		formatMean(report.ET), formatObservations(report.ET.Observations))

	if a := report.ETAnalysis; a != nil {
		fmt.Fprintf(&b, "ET Analysis Data:\n")
		fmt.Fprintf(&b, "- Total ET mm: %d mm\n", a.TotalETMm)
		fmt.Fprintf(&b, "- Mean Monthly ET mm: %g\n", a.MeanMonthlyETMm)
		fmt.Fprintf(&b, "- Max Monthly ET mm: %d\n", a.MaxMonthlyETMm)
		fmt.Fprintf(&b, "- Min Monthly ET mm: %d\n", a.MinMonthlyETMm)
		fmt.Fprintf(&b, "- Peak ET Month: %s\n", a.PeakETMonth)
		fmt.Fprintf(&b, "- Total ET Inches: %g\n", a.TotalETInches)
		fmt.Fprintf(&b, "- Growing Season ET mm: %d\n", a.GrowingSeasonETMm)
		fmt.Fprintf(&b, "- Growing Season ET Inches: %g\n", a.GrowingSeasonETInches)
		fmt.Fprintf(&b, "- Date Range: %s to %s\n", a.DateRange.Start, a.DateRange.End)
		fmt.Fprintf(&b, "- Yearly Totals mm: %v\n", a.YearlyTotalsMm)
		fmt.Fprintf(&b, "- Seasonal Totals mm: winter=%d spring=%d summer=%d fall=%d\n",
			a.SeasonalTotalsMm.Winter, a.SeasonalTotalsMm.Spring, a.SeasonalTotalsMm.Summer, a.SeasonalTotalsMm.Fall)
		fmt.Fprintf(&b, "- Monthly Trend: %s\n", a.MonthlyTrend)
		fmt.Fprintf(&b, "- Trend Slope mm per Month: %g\n", a.TrendSlopeMmPerMonth)
		fmt.Fprintf(&b, "- ET Variability: std_dev=%g cv=%g consistency=%s\n",
			a.ETVariability.StdDevMm, a.ETVariability.CoefficientOfVariation, a.ETVariability.Consistency)
		fmt.Fprintf(&b, "- Water Use Classification: %s\n", a.WaterUseClass)
		fmt.Fprintf(&b, "- Water Use Description: %s\n\n", a.WaterUseDescription)
	}

	if v := report.VegetationSummary; v != nil {
		fmt.Fprintf(&b, "Vegetation Summary:\n")
		fmt.Fprintf(&b, "- Total observations: %d\n", v.TotalObservations)
		fmt.Fprintf(&b, "- Mean NDVI: %g\n", v.MeanNDVI)
		fmt.Fprintf(&b, "- Max NDVI: %g\n", v.MaxNDVI)
		fmt.Fprintf(&b, "- Min NDVI: %g\n", v.MinNDVI)
		fmt.Fprintf(&b, "- Std Dev: %g\n", v.StdDev)
		fmt.Fprintf(&b, "- Vigor Classification: %s\n", v.VigorClassification)
	}

	return b.String()
}

func formatMean(series domain.ExtractedSeries) string {
	if series.ValuesFound == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%g", series.Mean)
}

func formatObservations(observations []domain.Observation) string {
	if len(observations) == 0 {
		return "none"
	}
	parts := make([]string, len(observations))
	for i, o := range observations {
		parts[i] = fmt.Sprintf("%s=%g", o.Date, o.Value)
	}
	return strings.Join(parts, ", ")
}

// Section extraction. Each pattern captures up to the next section marker so
// models that run sections together on one line still parse.
var sectionPatterns = []struct {
	assign  func(*domain.TextSummary, string)
	pattern *regexp.Regexp
}{
	{func(s *domain.TextSummary, v string) { s.TrendConsistency = v },
		regexp.MustCompile(`(?is)TREND_CONSISTENCY:\s*(.+?)(?:TIMING_ALIGNMENT:|$)`)},
	{func(s *domain.TextSummary, v string) { s.TimingAlignment = v },
		regexp.MustCompile(`(?is)TIMING_ALIGNMENT:\s*(.+?)(?:CONTINUITY_OVER_TIME:|$)`)},
	{func(s *domain.TextSummary, v string) { s.ContinuityOverTime = v },
		regexp.MustCompile(`(?is)CONTINUITY_OVER_TIME:\s*(.+?)(?:OVERALL_SUMMARY:|$)`)},
	{func(s *domain.TextSummary, v string) { s.AISummary = v },
		regexp.MustCompile(`(?is)OVERALL_SUMMARY:\s*(.+)$`)},
}

func parseSections(content string) domain.TextSummary {
	var result domain.TextSummary
	for _, sp := range sectionPatterns {
		if m := sp.pattern.FindStringSubmatch(content); m != nil {
			sp.assign(&result, strings.TrimSpace(m[1]))
		}
	}
	if result.TrendConsistency != "" {
		return result
	}

	// Some gateways return JSON despite the formatting instructions.
	var fromJSON domain.TextSummary
	if err := json.Unmarshal([]byte(content), &fromJSON); err == nil && fromJSON.TrendConsistency != "" {
		return fromJSON
	}

	// Unstructured response: keep it as the overall summary.
	const maxUnstructured = 500
	if content == "" {
		content = "No response generated"
	} else if len(content) > maxUnstructured {
		content = content[:maxUnstructured]
	}
	const seeOverall = "See overall summary for details."
	return domain.TextSummary{
		TrendConsistency:   seeOverall,
		TimingAlignment:    seeOverall,
		ContinuityOverTime: seeOverall,
		AISummary:          content,
	}
}
