package suite

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samvad-hq/petfriends-verifier/internal/verifier"
	"github.com/samvad-hq/petfriends-verifier/pkg/fixtures"
	"github.com/samvad-hq/petfriends-verifier/pkg/petfriends"
	"github.com/stretchr/testify/require"
)

// defectCheck inspects the pet the service stored and returns a description
// when the invalid input was accepted.
type defectCheck func(f fixtures.Fixture, pet petfriends.PetRecord) string

var defectScenarios = []struct {
	name    string
	fixture string
	check   defectCheck
}{
	{"negative age", fixtures.NegativeAge, func(f fixtures.Fixture, pet petfriends.PetRecord) string {
		if strings.Contains(pet.Age, f.Age) {
			return "negative age " + f.Age + " was stored as " + strconv.Quote(pet.Age)
		}
		return ""
	}},
	{"three digit age", fixtures.ThreeDigitAge, func(f fixtures.Fixture, pet petfriends.PetRecord) string {
		if utf8.RuneCountInString(pet.Age) >= 3 {
			return "age with three or more digits was stored as " + strconv.Quote(pet.Age)
		}
		return ""
	}},
	{"empty name", fixtures.EmptyName, func(f fixtures.Fixture, pet petfriends.PetRecord) string {
		if pet.Name == "" {
			return "pet with an empty name was stored"
		}
		return ""
	}},
	{"numeric animal type", fixtures.NumericAnimalType, func(f fixtures.Fixture, pet petfriends.PetRecord) string {
		if strings.Contains(pet.AnimalType, f.AnimalType) {
			return "numeric animal type was stored as " + strconv.Quote(pet.AnimalType)
		}
		return ""
	}},
	{"letters in age", fixtures.LettersInAge, func(f fixtures.Fixture, pet petfriends.PetRecord) string {
		if strings.Contains(pet.Age, f.Age) {
			return "alphabetic age was stored as " + strconv.Quote(pet.Age)
		}
		return ""
	}},
}

// defects submits invalid pet data. A 4xx answer means the service validated
// the input and the scenario passes.
func (e Env) defects(t *verifier.T) {
	for _, sc := range defectScenarios {
		t.Run(sc.name, func(t *verifier.T) {
			key := e.login(t)
			f := e.fixture(t, sc.fixture)
			status, body, err := e.addPet(t, key, f)
			require.NoError(t, err)
			if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
				t.Debug("invalid input rejected with status %d", status)
				return
			}
			require.Equal(t, http.StatusOK, status, "unexpected status for invalid input")
			if msg := sc.check(f, body.Pet()); msg != "" {
				t.Defect("%s", msg)
			}
		})
	}
}
