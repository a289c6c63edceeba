package mapping

import "strings"

// aliases lists, per universal field, the known header spellings in match
// order. The first alias that appears among the observed headers wins.
// French spellings come from the metering systems this tool was built for.
var aliases = map[string][]string{
	"meter_id": {
		"meter_id", "id_compteur", "compteur", "meter", "meter_no",
		"meter_number", "numero_compteur",
	},
	"customer_id": {
		"customer_id", "id_client", "client", "customer", "account_id",
		"numero_client",
	},
	"reading_value": {
		"reading_value", "valeur_releve", "valeur", "value", "releve",
		"reading", "consommation",
	},
	"reading_date": {
		"reading_date", "date_releve", "date", "date_lecture", "reading_at",
	},
	"unit": {
		"unit", "unite", "uom",
	},
	"source_system": {
		"source_system", "systeme", "source", "system",
	},
}

// Infer builds a mapping from observed column headers by case-insensitive
// alias matching. A required field with no matching header fails with an
// Error naming the field.
func Infer(headers []string) (Mapping, error) {
	observed := make(map[string]string, len(headers))
	for _, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := observed[key]; !ok && key != "" {
			observed[key] = h
		}
	}

	pick := func(field string) string {
		for _, alias := range aliases[field] {
			if original, ok := observed[alias]; ok {
				return original
			}
		}
		return ""
	}

	m := Mapping{
		MeterID:      pick("meter_id"),
		CustomerID:   pick("customer_id"),
		ReadingValue: pick("reading_value"),
		ReadingDate:  pick("reading_date"),
		Unit:         pick("unit"),
		SourceSystem: pick("source_system"),
		DateFormat:   InferredDateFormat,
	}

	for _, f := range requiredFields {
		if f.col(m) == "" {
			return Mapping{}, &Error{Field: f.name, Reason: "no matching column header"}
		}
	}
	return m, nil
}
