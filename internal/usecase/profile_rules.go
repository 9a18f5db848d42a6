package usecase

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/domain/repository"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// profileRules validates profile fields that depend on reference data and
// copies the accepted values onto the master.
type profileRules struct {
	referenceRepo repository.ReferenceRepository
	capitalCity   string
}

func newProfileRules(referenceRepo repository.ReferenceRepository, capitalCity string) *profileRules {
	if capitalCity == "" {
		capitalCity = entity.DefaultCapitalCity
	}
	return &profileRules{
		referenceRepo: referenceRepo,
		capitalCity:   strings.ToLower(capitalCity),
	}
}

func (p *profileRules) applyProfession(db *gorm.DB, master *entity.Master, categoryID, serviceID uint, customProfession string) error {
	category, err := p.referenceRepo.FindByID(db, entity.KindCategory, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return newFieldError("profession_category", "Selected category does not exist")
	}

	service, err := p.referenceRepo.FindServiceByID(db, serviceID)
	if err != nil {
		return err
	}
	if service == nil {
		return newFieldError("profession_service", "Selected service does not exist")
	}
	if service.CategoryID != categoryID {
		return newFieldError("profession_service", "Selected service does not belong to the selected category")
	}

	customProfession = strings.TrimSpace(customProfession)
	if service.Name == entity.ServiceNameOther {
		if customProfession == "" {
			return newFieldError("custom_profession", "Custom profession is required when the service is other")
		}
	} else if customProfession != "" {
		return newFieldError("custom_profession", "Custom profession is allowed only for the other service")
	}

	master.ProfessionCategoryID = &category.ID
	master.ProfessionServiceID = &service.ID
	master.ProfessionCategory = nil
	master.ProfessionService = nil
	master.CustomProfession = customProfession
	return nil
}

// applyLocations checks that every district lies in one of the selected
// cities and that districts are only chosen under the capital city.
func (p *profileRules) applyLocations(db *gorm.DB, master *entity.Master, cityIDs, districtIDs []uint) error {
	cityIDs = uniqueIDs(cityIDs)
	if len(cityIDs) == 0 {
		return newFieldError("cities", "At least one city is required")
	}

	cities, err := p.referenceRepo.FindCitiesByIDs(db, cityIDs)
	if err != nil {
		return err
	}
	if len(cities) != len(cityIDs) {
		return newFieldError("cities", "One or more selected cities do not exist")
	}

	selected := make(map[uint]entity.City, len(cities))
	for _, c := range cities {
		selected[c.ID] = c
	}

	districtIDs = uniqueIDs(districtIDs)
	var districts []entity.District
	if len(districtIDs) > 0 {
		districts, err = p.referenceRepo.FindDistrictsByIDs(db, districtIDs)
		if err != nil {
			return err
		}
		if len(districts) != len(districtIDs) {
			return newFieldError("districts", "One or more selected districts do not exist")
		}
	}

	for _, d := range districts {
		if d.CityID == nil {
			return newFieldError("districts", fmt.Sprintf("District %s does not belong to any city", d.DisplayName))
		}
		city, ok := selected[*d.CityID]
		if !ok {
			return newFieldError("districts", fmt.Sprintf("District %s does not belong to the selected cities", d.DisplayName))
		}
		if strings.ToLower(city.Name) != p.capitalCity {
			return newFieldError("districts", fmt.Sprintf("Districts can only be selected for %s", p.capitalCity))
		}
	}

	master.Cities = cities
	master.Districts = districts
	return nil
}

func (p *profileRules) applyEducation(db *gorm.DB, master *entity.Master, educationID uint, detail string) error {
	education, err := p.referenceRepo.FindEducationByID(db, educationID)
	if err != nil {
		return err
	}
	if education == nil {
		return newFieldError("education", "Selected education does not exist")
	}

	detail = strings.TrimSpace(detail)
	if education.Name == entity.EducationNameNone {
		if detail != "" {
			return newFieldError("education_detail", "Education detail must be empty when there is no education")
		}
	} else if detail == "" {
		return newFieldError("education_detail", "Education detail is required")
	}

	master.EducationID = &education.ID
	master.Education = nil
	master.EducationDetail = detail
	return nil
}

func (p *profileRules) applyLanguages(db *gorm.DB, master *entity.Master, languageIDs []uint) error {
	languageIDs = uniqueIDs(languageIDs)
	if len(languageIDs) == 0 {
		return newFieldError("languages", "At least one language is required")
	}

	languages, err := p.referenceRepo.FindLanguagesByIDs(db, languageIDs)
	if err != nil {
		return err
	}
	if len(languages) != len(languageIDs) {
		return newFieldError("languages", "One or more selected languages do not exist")
	}

	master.Languages = languages
	return nil
}

// formatFullName title-cases each word with Azerbaijani casing rules.
func formatFullName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.Azerbaijani).String(name)
}

// capitalizeFirst upper-cases the first letter and keeps the rest as typed.
func capitalizeFirst(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func uniqueIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
