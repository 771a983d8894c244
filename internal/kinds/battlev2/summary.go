package battlev2

import "github.com/rokbattles/mailcore/internal/extract"

// DataSummaryResolver fills "data_summary" with the full participant roster
// (self and every opponent), sorted by participant id.
type DataSummaryResolver struct{}

// NewDataSummaryResolver returns a new data summary resolver.
func NewDataSummaryResolver() *DataSummaryResolver { return &DataSummaryResolver{} }

// Name returns the step name used for error reporting.
func (DataSummaryResolver) Name() string { return "data_summary" }

// Resolve fills data_summary with the content STs roster, or leaves it
// absent if the mail carries no content object.
func (DataSummaryResolver) Resolve(ctx *Context, output *extract.ProcessedMail) error {
	if len(ctx.Sections) == 0 {
		return nil
	}
	content, err := requireContent(ctx.Sections[0])
	if err != nil {
		return nil
	}
	participants, err := extractParticipants(content, "STs")
	if err != nil {
		return err
	}
	if _, exists := output.Sections()["data_summary"]; !exists {
		output.Insert("data_summary", extract.NewArraySection(participants))
	}
	return nil
}
