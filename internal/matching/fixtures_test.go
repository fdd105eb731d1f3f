package matching

import (
	"time"

	"github.com/google/uuid"
)

var testOrg = uuid.MustParse("6f1c2b1e-9a53-4c1e-8d0e-2a4b5c6d7e8f")

func testProject(name string, roles ...RoleRequirement) Project {
	return Project{
		ID:        uuid.New(),
		Name:      name,
		OrgID:     testOrg,
		StartDate: NewDate(2024, time.June, 1),
		Roles:     roles,
	}
}

func role(name string, quantity int, skills ...string) RoleRequirement {
	return RoleRequirement{Role: name, Skills: SkillDeclarations(skills), Quantity: quantity}
}

func testResource(name string, rate float64, skills ...string) Resource {
	return Resource{
		ID:     uuid.New(),
		Name:   name,
		Rate:   rate,
		Skills: SkillDeclarations(skills),
		OrgID:  testOrg,
	}
}

func slotFor(p *Project, req RoleRequirement) Slot {
	required, _ := ReadRequirementSkills(req.Skills)
	return Slot{Project: p, Role: req.Role, Required: required}
}

func candidateFor(r *Resource) Candidate {
	cands, _ := ReadCandidates([]Resource{*r})
	c := cands[0]
	c.Resource = r
	return c
}
