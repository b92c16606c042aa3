package extract

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/kilianp07/wheelsched/core/command"
)

func systemPrompt(zone string) string {
	return fmt.Sprintf("You normalize factory scheduling edit commands for a Gantt. "+
		"Return ONLY JSON matching the given schema. "+
		"Supported intents: delay_order, move_order, swap_orders. "+
		"Order IDs look like O021 (3 digits). "+
		"If user says 'tomorrow' etc., convert to ISO date in %s. "+
		"If time missing on move_order, omit it. "+
		"If units missing on delay_order, assume days.", zone)
}

const workedExamples = `Examples:
1) "delay O021 one day" -> {"intent":"delay_order","order_id":"O021","days":1}
2) "push order O009 by 24h" -> {"intent":"delay_order","order_id":"O009","hours":24}
3) "move o014 to Aug 30 9am" -> {"intent":"move_order","order_id":"O014","date":"2025-08-30","time":"09:00"}
4) "swap o027 with o031" -> {"intent":"swap_orders","order_id":"O027","order_id_2":"O031"}
5) "move O008 on monday morning" -> {"intent":"move_order","order_id":"O008","date":"<monday ISO>","time":"09:00"}
`

// payloadSchema is the structured output contract sent to the model. It
// mirrors command.Payload minus the fields only the engine sets.
func payloadSchema(zone string) *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	orderID := &genai.Schema{Type: genai.TypeString, Pattern: `^O\d{3}$`}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"intent": {
				Type: genai.TypeString,
				Enum: []string{string(command.IntentDelay), string(command.IntentMove), string(command.IntentSwap)},
			},
			"order_id":   orderID,
			"order_id_2": orderID,
			"days":       {Type: genai.TypeNumber},
			"hours":      {Type: genai.TypeNumber},
			"date":       str("ISO date YYYY-MM-DD"),
			"time":       str("24h time HH:MM"),
			"timezone":   {Type: genai.TypeString, Default: zone},
			"note":       str("free text"),
		},
		Required: []string{"intent"},
		PropertyOrdering: []string{
			"intent", "order_id", "order_id_2", "days", "hours", "date", "time", "timezone", "note",
		},
	}
}
