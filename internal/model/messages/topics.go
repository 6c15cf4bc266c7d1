package messages

import "fmt"

const (
	TopicConfigSaved      = "event/configSaved"
	TopicActualIrrigation = "event/actualIrrigation"
)

// ConfigSavedTopic returns the per-block topic "event/configSaved/{block}".
func ConfigSavedTopic(block string) string { return fmt.Sprintf("%s/%s", TopicConfigSaved, block) }

func ActualIrrigationTopic(block string) string {
	return fmt.Sprintf("%s/%s", TopicActualIrrigation, block)
}
