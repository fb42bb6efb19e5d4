package stage

import (
	"woodway/internal/naming"
	"woodway/internal/queue"
	"woodway/internal/services"
	"woodway/internal/taxonomy"
)

// ItemSelection decodes the taxonomy selection recorded on a queue item.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ItemSelection(item *queue.Item) (taxonomy.Selection, error) {
	sel, err := taxonomy.SelectionFromJSON(item.AttributesJSON)
	if err != nil {
		return taxonomy.Selection{}, services.Wrap(
			services.ErrValidation, "stage", "decode attributes",
			"Item attributes missing or invalid; re-enqueue the file", err)
	}
	return sel, nil
}

// ItemNamingPlan decodes the planned output name recorded on a queue item.
func ItemNamingPlan(item *queue.Item) (naming.Result, error) {
	plan, err := naming.ResultFromJSON(item.NamingJSON)
	if err != nil || plan.Final == "" {
		return naming.Result{}, services.Wrap(
			services.ErrValidation, "stage", "decode naming plan",
			"Naming plan missing or invalid; rerun batch planning", err)
	}
	return plan, nil
}
