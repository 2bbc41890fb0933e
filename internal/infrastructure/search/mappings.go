package search

import (
	searchapp "github.com/datahub/backend/internal/application/search"
)

// DocumentTypeField holds the app of every indexed document
const DocumentTypeField = "_document_type"

func keyword() map[string]any {
	return map[string]any{"type": "keyword"}
}

func text() map[string]any {
	return map[string]any{"type": "text"}
}

func date() map[string]any {
	return map[string]any{"type": "date"}
}

func boolean() map[string]any {
	return map[string]any{"type": "boolean"}
}

func double() map[string]any {
	return map[string]any{"type": "double"}
}

func long() map[string]any {
	return map[string]any{"type": "long"}
}

// nameKeyword is sortable and matches whole names case-insensitively
func nameKeyword() map[string]any {
	return map[string]any{"type": "keyword", "normalizer": "lowercase_normalizer"}
}

// idName maps a related record as a nested {id, name} object
func idName() map[string]any {
	return map[string]any{
		"type": "nested",
		"properties": map[string]any{
			"id":   keyword(),
			"name": text(),
		},
	}
}

// address is nested as a whole so filters on any of its fields use the path "address"
func address() map[string]any {
	return map[string]any{
		"type": "nested",
		"properties": map[string]any{
			"line_1":   text(),
			"line_2":   text(),
			"town":     text(),
			"county":   text(),
			"postcode": text(),
			"country":  idObject(),
		},
	}
}

// idObject maps {id, name} inside a nested object
func idObject() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":   keyword(),
			"name": text(),
		},
	}
}

func common(props map[string]any) map[string]any {
	props["id"] = keyword()
	props[DocumentTypeField] = keyword()
	props["created_on"] = date()
	props["modified_on"] = date()
	return props
}

func archivable(props map[string]any) map[string]any {
	props["archived"] = boolean()
	props["archived_on"] = date()
	props["archived_reason"] = text()
	return props
}

// indexSettings is shared by every index
var indexSettings = map[string]any{
	"analysis": map[string]any{
		"normalizer": map[string]any{
			"lowercase_normalizer": map[string]any{
				"type":   "custom",
				"filter": []string{"lowercase"},
			},
		},
	},
}

// appConfig describes how an app is indexed and searched
type appConfig struct {
	properties   map[string]any
	searchFields []string
}

var apps = map[string]appConfig{
	searchapp.AppCompany: {
		properties: archivable(common(map[string]any{
			"name":                       text(),
			"name_keyword":               nameKeyword(),
			"trading_names":              text(),
			"company_number":             keyword(),
			"vat_number":                 keyword(),
			"reference_code":             keyword(),
			"description":                text(),
			"website":                    text(),
			"sector":                     idName(),
			"uk_region":                  idName(),
			"business_type":              idName(),
			"employee_range":             idName(),
			"turnover_range":             idName(),
			"headquarter_type":           idName(),
			"classification":             idName(),
			"export_experience_category": idName(),
			"global_headquarters":        idName(),
			"one_list_account_owner":     idName(),
			"transferred_to":             idName(),
			"address":                    address(),
			"registered_address":         address(),
		})),
		searchFields: []string{"name", "trading_names", "company_number", "reference_code"},
	},
	searchapp.AppContact: {
		properties: archivable(common(map[string]any{
			"name":                    text(),
			"name_keyword":            nameKeyword(),
			"title":                   keyword(),
			"first_name":              text(),
			"last_name":               text(),
			"job_title":               text(),
			"email":                   keyword(),
			"full_telephone_number":   keyword(),
			"primary":                 boolean(),
			"company":                 idName(),
			"address_same_as_company": boolean(),
			"address_area":            idName(),
			"address":                 address(),
			"notes":                   text(),
		})),
		searchFields: []string{"name", "first_name", "last_name", "email", "job_title"},
	},
	searchapp.AppInteraction: {
		properties: archivable(common(map[string]any{
			"kind":                         keyword(),
			"status":                       keyword(),
			"subject":                      text(),
			"notes":                        text(),
			"date":                         date(),
			"company":                      idName(),
			"contacts":                     idName(),
			"event":                        idName(),
			"service":                      idName(),
			"communication_channel":        idName(),
			"service_delivery_status":      idName(),
			"policy_areas":                 idName(),
			"investment_project":           idName(),
			"was_policy_feedback_provided": boolean(),
			"grant_amount_offered":         double(),
			"net_company_receipt":          double(),
			"dit_participants": map[string]any{
				"type": "nested",
				"properties": map[string]any{
					"adviser": idObject(),
					"team":    idObject(),
				},
			},
		})),
		searchFields: []string{"subject", "notes"},
	},
	searchapp.AppInvestmentProject: {
		properties: common(map[string]any{
			"name":                        text(),
			"name_keyword":                nameKeyword(),
			"project_code":                keyword(),
			"description":                 text(),
			"status":                      keyword(),
			"nda_signed":                  boolean(),
			"estimated_land_date":         date(),
			"actual_land_date":            date(),
			"investment_type":             idName(),
			"stage":                       idName(),
			"sector":                      idName(),
			"likelihood_to_land":          idName(),
			"investor_company":            idName(),
			"intermediate_company":        idName(),
			"client_relationship_manager": idName(),
			"referral_source_adviser":     idName(),
			"project_manager":             idName(),
			"project_assurance_adviser":   idName(),
			"team_members":                idName(),
			"total_investment":            double(),
			"foreign_equity_investment":   double(),
			"number_new_jobs":             long(),
		}),
		searchFields: []string{"name", "project_code", "description"},
	},
}

func appFor(app string) (appConfig, bool) {
	cfg, ok := apps[app]
	return cfg, ok
}
