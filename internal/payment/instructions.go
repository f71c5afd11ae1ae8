package payment

import (
	"strings"

	"daztao-be/internal/pricing"
)

var InstructionMap = map[pricing.PaymentMethod][]string{
	pricing.MethodUPI: {
		"Pay {{amount}} to UPI ID {{upi_id}} from any UPI app",
		"Add {{order_id}} in the payment note",
		"Copy the 12-digit UTR / transaction reference from your UPI app",
		"Submit the UTR on the order page so we can verify your payment",
	},
	pricing.MethodCOD: {
		"Your order {{order_id}} will be shipped to the address you entered",
		"Keep {{amount}} ready in cash when the courier arrives",
		"The total includes the cash-on-delivery fee",
		"Confirm the order on WhatsApp so we can dispatch it",
	},
}

func GetInstructions(method pricing.PaymentMethod) []string {
	if steps, ok := InstructionMap[method]; ok {
		return steps
	}

	return []string{
		"Follow the payment steps shown on this page",
	}
}

type InstructionVars map[string]string

func InjectVariables(
	steps []string,
	vars InstructionVars,
) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(
				updated,
				"{{"+key+"}}",
				value,
			)
		}
		result = append(result, updated)
	}

	return result
}
