package table

// Section names found in CASAVA Demultiplex_Stats.htm reports.
const (
	SectionBarcodeLaneStatistics = "Barcode_lane_statistics"
	SectionSampleInformation     = "Sample_information"
)

// KnownBarcodeLaneHeader is the Barcode lane statistics header written by
// CASAVA 1.8.
var KnownBarcodeLaneHeader = []string{
	"Lane", "Sample ID", "Sample Ref", "Index",
	"Description", "Control", "Project", "Yield (Mbases)", "% PF",
	"# Reads", "% of raw clusters per lane",
	"% Perfect Index Reads", "% One Mismatch Reads (Index)",
	"% of >= Q30 Bases (PF)", "Mean Quality Score (PF)",
}

// KnownSampleInformationHeader is the Sample information header. The report
// writes the first label as Sample<p></p>ID, which reads as "Sample ID".
var KnownSampleInformationHeader = []string{"Sample ID", "Recipe", "Operator", "Directory"}

// DemultiplexStatsHeaders returns the expected headers for strict mode.
func DemultiplexStatsHeaders() map[string][]string {
	return map[string][]string{
		SectionBarcodeLaneStatistics: KnownBarcodeLaneHeader,
		SectionSampleInformation:     KnownSampleInformationHeader,
	}
}

// DemultiplexStatsHeadersWith returns the known headers with each
// overridden section header replaced.
func DemultiplexStatsHeadersWith(overrides map[string][]string) map[string][]string {
	headers := DemultiplexStatsHeaders()
	for name, header := range overrides {
		headers[name] = header
	}
	return headers
}
