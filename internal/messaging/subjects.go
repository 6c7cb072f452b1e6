// Package messaging publishes accepted readings on the message bus so
// other processes can tap the live feed without polling the API.
package messaging

// Subject constants follow the pattern: {domain}.{resource}.{event}
const (
	// SubjectReadingsAccepted carries every reading the ingestion gate
	// accepted, in its ledger form (id and capture time assigned).
	SubjectReadingsAccepted = "nodewatch.readings.accepted"

	// SubjectFlagsUpdated carries actuator flag writes accepted by the
	// command gate. Append the flag name for a per-flag subscription.
	SubjectFlagsUpdated = "nodewatch.flags.updated"
)

// FlagSubject returns the subject for one flag's updates.
// Example: nodewatch.flags.updated.relay
func FlagSubject(name string) string {
	return SubjectFlagsUpdated + "." + name
}
