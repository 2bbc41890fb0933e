package metadata

import "github.com/google/uuid"

// Reference data rows with fixed ids that validation rules depend on
var (
	CountryUnitedKingdom = uuid.MustParse("80756b9a-5d95-e211-a939-e4115bead28a")
	CountryUnitedStates  = uuid.MustParse("81756b9a-5d95-e211-a939-e4115bead28a")
	CountryCanada        = uuid.MustParse("5daf72a6-5d95-e211-a939-e4115bead28a")

	BusinessTypeUKEstablishment = uuid.MustParse("9dd14e94-5d95-e211-a939-e4115bead28a")

	HeadquarterTypeGlobal = uuid.MustParse("43281c5e-92a4-4794-867b-b4d5f801e6f3")
)
