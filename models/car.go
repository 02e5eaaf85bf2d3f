package models

import "sort"

// Field names as they appear in the CarTable CSV header.
const (
	FieldPrice               = "price"
	FieldTransmission        = "transmission"
	FieldFuelType            = "fuel_type"
	FieldEngineCapacity      = "engine_capacity"
	FieldCurbWeight          = "curb_weight"
	FieldPower               = "power"
	FieldRoadTax             = "road_tax"
	FieldDeregistrationValue = "deregistration_value"
	FieldCOE                 = "coe"
	FieldOMV                 = "omv"
	FieldARF                 = "arf"
	FieldMileage             = "mileage"
	FieldOwners              = "owners"
	FieldDealer              = "dealer"
	FieldRegDate             = "reg_date"
	FieldCarModel            = "carmodel"
	FieldTypeOfVehicle       = "type_of_vehicle"
	FieldURL                 = "url"

	// Secondary spellings some listings carry alongside the main keys.
	FieldDeregValue = "dereg_value"
	FieldEngineCap  = "engine_cap"
)

// CanonicalFields is the vocabulary a record must fully populate to count
// as complete.
var CanonicalFields = []string{
	FieldPrice, FieldTransmission, FieldFuelType, FieldEngineCapacity,
	FieldCurbWeight, FieldPower, FieldRoadTax, FieldDeregistrationValue,
	FieldCOE, FieldOMV, FieldARF, FieldMileage, FieldOwners, FieldDealer,
	FieldRegDate, FieldCarModel, FieldTypeOfVehicle, FieldURL,
}

// CarRecord maps field names to cleaned values for one listing.
// A missing key means the extractor could not locate that field.
type CarRecord map[string]string

// Get returns the value for key, or "" when absent.
func (r CarRecord) Get(key string) string {
	return r[key]
}

// Set stores a non-empty value; empty values are treated as absent.
func (r CarRecord) Set(key, value string) {
	if value == "" {
		return
	}
	r[key] = value
}

// Populated counts canonical fields that carry a value.
func (r CarRecord) Populated() int {
	n := 0
	for _, f := range CanonicalFields {
		if r[f] != "" {
			n++
		}
	}
	return n
}

// Complete reports whether every canonical field is populated.
func (r CarRecord) Complete() bool {
	return r.Populated() == len(CanonicalFields)
}

// Missing lists the canonical fields without a value, in vocabulary order.
func (r CarRecord) Missing() []string {
	var out []string
	for _, f := range CanonicalFields {
		if r[f] == "" {
			out = append(out, f)
		}
	}
	return out
}

// URL returns the listing address identifying the record.
func (r CarRecord) URL() string {
	return r[FieldURL]
}

// OrderedKeys returns rec's keys with canonical fields first, in
// vocabulary order, then any other keys sorted.
func OrderedKeys(rec CarRecord) []string {
	keys := make([]string, 0, len(rec))
	seen := make(map[string]struct{}, len(rec))
	for _, f := range CanonicalFields {
		if _, ok := rec[f]; ok {
			keys = append(keys, f)
			seen[f] = struct{}{}
		}
	}
	var rest []string
	for k := range rec {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
