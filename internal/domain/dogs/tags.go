package dogs

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxTags            = 5
	maxPersonalityTags = 3
	sterilizedLabel    = "neutered"
	notSterilizedLabel = "not neutered"
)

var personalitySep = regexp.MustCompile(`[,，;；。\s]+`)

// Tags sintetiza hasta 5 etiquetas: raza, género, esterilizado y hasta 3 rasgos.
func Tags(d Dog) []string {
	tags := make([]string, 0, maxTags)
	if b := strings.TrimSpace(d.Breed); b != "" {
		tags = append(tags, b)
	}
	if l := d.Gender.Label(); l != "" {
		tags = append(tags, l)
	}
	if d.Sterilized != nil {
		if *d.Sterilized {
			tags = append(tags, sterilizedLabel)
		} else {
			tags = append(tags, notSterilizedLabel)
		}
	}

	n := 0
	for _, p := range personalitySep.Split(d.Personality, -1) {
		if n == maxPersonalityTags {
			break
		}
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		tags = append(tags, p)
		n++
	}

	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

// Primary elige el perro más antiguo con avatar.
func Primary(items []Dog) (Dog, bool) {
	sorted := make([]Dog, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	for _, d := range sorted {
		if strings.TrimSpace(d.Avatar) != "" {
			return d, true
		}
	}
	return Dog{}, false
}

func ToSummary(d Dog) Summary {
	return Summary{
		ID:     d.ID,
		Name:   d.Name,
		Breed:  d.Breed,
		Avatar: d.Avatar,
		Tags:   Tags(d),
	}
}

// GroupByOwner arma OwnerDogs para cada owner pedido (incluso sin perros).
func GroupByOwner(ownerIDs []string, items []Dog) map[string]OwnerDogs {
	byOwner := make(map[string][]Dog, len(ownerIDs))
	for _, d := range items {
		byOwner[d.OwnerUserID] = append(byOwner[d.OwnerUserID], d)
	}

	out := make(map[string]OwnerDogs, len(ownerIDs))
	for _, id := range ownerIDs {
		list := byOwner[id]
		od := OwnerDogs{Count: len(list)}
		if p, ok := Primary(list); ok {
			s := ToSummary(p)
			od.Primary = &s
		}
		out[id] = od
	}
	return out
}
