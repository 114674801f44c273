package mapping

import "autofill-service/internal/autofill/model"

// defaultTable covers the fields an identity-verification payload carries.
var defaultTable = map[string][]string{
	"firstName":      {"first_name", "firstname", "given_name", "givenname", "fname", "first name", "given name", "forename"},
	"lastName":       {"last_name", "lastname", "family_name", "familyname", "surname", "lname", "last name", "family name"},
	"middleName":     {"middle_name", "middlename", "middle name", "mname"},
	"fullName":       {"full_name", "fullname", "full name", "name_on_document"},
	"birthDate":      {"birth_date", "birthdate", "date_of_birth", "dateofbirth", "dob", "birthday", "date of birth"},
	"expiryDate":     {"expiry_date", "expirydate", "expiration_date", "date_of_expiry", "valid_until", "expiry"},
	"issueDate":      {"issue_date", "issuedate", "date_of_issue", "issued_on", "issuance_date"},
	"documentNumber": {"document_number", "documentnumber", "doc_number", "passport_number", "id_number", "license_number"},
	"nationality":    {"nationality", "citizenship"},
	"sex":            {"sex", "gender"},
	"address":        {"address", "street_address", "address_line1", "address1", "street"},
	"city":           {"city", "town", "locality"},
	"postalCode":     {"postal_code", "postalcode", "postcode", "zip_code", "zipcode", "zip"},
	"country":        {"country", "country_code", "countrycode"},
	"email":          {"email", "e-mail", "email_address"},
	"phone":          {"phone", "phone_number", "telephone", "mobile"},
	"isAgeOver18":    {"age_over_18", "is_age_over_18", "over18", "over_18", "adult"},
	"isAgeOver21":    {"age_over_21", "is_age_over_21", "over21", "over_21"},
}

// Default returns the built-in mapping.
func Default() model.FieldMapping {
	return model.NewFieldMapping(defaultTable)
}
