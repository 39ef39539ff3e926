package email

import "fmt"

const (
	subjectNewLeadFmt        = "New Lead: %s (%s)"
	subjectNewHotLeadFmt     = "New HOT Lead: %s (%s)"
	subjectAnalysisReportFmt = "%s, your story shows %s! (%d/100)"
)

func newLeadSubject(data NewLeadEmail) string {
	if data.Hot {
		return fmt.Sprintf(subjectNewHotLeadFmt, data.Name, data.Budget)
	}
	return fmt.Sprintf(subjectNewLeadFmt, data.Name, data.Budget)
}

func analysisReportSubject(data AnalysisReportEmail) string {
	return fmt.Sprintf(subjectAnalysisReportFmt, data.FirstName, data.Tier, data.OverallScore)
}
