package services

import "costs/internal/core"

// TeamService serves the fixed team listing configured at startup.
type TeamService struct {
	members []core.TeamMember
}

func NewTeamService(members []core.TeamMember) *TeamService {
	return &TeamService{members: append([]core.TeamMember(nil), members...)}
}

// Members returns a copy of the listing in configured order.
func (s *TeamService) Members() []core.TeamMember {
	return append([]core.TeamMember{}, s.members...)
}
