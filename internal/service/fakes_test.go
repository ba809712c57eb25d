package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/internal/repository"
)

// memWorld is an in-memory stand-in for the database shared by every fake
// store. memTx snapshots it so a failed transaction leaves no trace.
type memWorld struct {
	mu  sync.Mutex
	seq int

	assignments   map[string]models.MajorAssignment
	teams         map[string]models.Team
	invitations   map[string]models.TeamInvitation
	leaves        map[string]models.LeaveTeamRequest
	dissolves     map[string]models.DissolveTeamRequest
	stages        map[string]models.Stage
	roles         map[string]models.DivisionRole
	divisions     []models.TeamDivision
	users         map[string]models.User
	classStudents map[string][]string

	notes  []models.Notification
	audits []models.AuditLog

	// failTeamCreate makes teams.Create fail for the given leader.
	failTeamCreate map[string]error
}

type worldState struct {
	seq         int
	assignments map[string]models.MajorAssignment
	teams       map[string]models.Team
	invitations map[string]models.TeamInvitation
	leaves      map[string]models.LeaveTeamRequest
	dissolves   map[string]models.DissolveTeamRequest
	stages      map[string]models.Stage
	roles       map[string]models.DivisionRole
	divisions   []models.TeamDivision
}

func newMemWorld() *memWorld {
	return &memWorld{
		assignments:    map[string]models.MajorAssignment{},
		teams:          map[string]models.Team{},
		invitations:    map[string]models.TeamInvitation{},
		leaves:         map[string]models.LeaveTeamRequest{},
		dissolves:      map[string]models.DissolveTeamRequest{},
		stages:         map[string]models.Stage{},
		roles:          map[string]models.DivisionRole{},
		users:          map[string]models.User{},
		classStudents:  map[string][]string{},
		failTeamCreate: map[string]error{},
	}
}

func (w *memWorld) nextID(prefix string) string {
	w.seq++
	return fmt.Sprintf("%s-%04d", prefix, w.seq)
}

func copyTeam(t models.Team) models.Team {
	t.Members = append([]models.TeamMember{}, t.Members...)
	return t
}

func copyAssignment(ma models.MajorAssignment) models.MajorAssignment {
	ma.TeacherIDs = append([]string{}, ma.TeacherIDs...)
	return ma
}

func (w *memWorld) snapshot() worldState {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := worldState{
		seq:         w.seq,
		assignments: map[string]models.MajorAssignment{},
		teams:       map[string]models.Team{},
		invitations: map[string]models.TeamInvitation{},
		leaves:      map[string]models.LeaveTeamRequest{},
		dissolves:   map[string]models.DissolveTeamRequest{},
		stages:      map[string]models.Stage{},
		roles:       map[string]models.DivisionRole{},
		divisions:   append([]models.TeamDivision{}, w.divisions...),
	}
	for k, v := range w.assignments {
		st.assignments[k] = copyAssignment(v)
	}
	for k, v := range w.teams {
		st.teams[k] = copyTeam(v)
	}
	for k, v := range w.invitations {
		st.invitations[k] = v
	}
	for k, v := range w.leaves {
		st.leaves[k] = v
	}
	for k, v := range w.dissolves {
		st.dissolves[k] = v
	}
	for k, v := range w.stages {
		st.stages[k] = v
	}
	for k, v := range w.roles {
		st.roles[k] = v
	}
	return st
}

func (w *memWorld) restore(st worldState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq = st.seq
	w.assignments = st.assignments
	w.teams = st.teams
	w.invitations = st.invitations
	w.leaves = st.leaves
	w.dissolves = st.dissolves
	w.stages = st.stages
	w.roles = st.roles
	w.divisions = st.divisions
}

// findTeamOf returns the team of ma that userID leads or belongs to.
func (w *memWorld) findTeamOf(majorAssignmentID, userID string) (models.Team, bool) {
	for _, team := range w.teams {
		if team.MajorAssignmentID != majorAssignmentID {
			continue
		}
		if team.Includes(userID) {
			return copyTeam(team), true
		}
	}
	return models.Team{}, false
}

func (w *memWorld) team(id string) models.Team {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyTeam(w.teams[id])
}

func (w *memWorld) teamsOf(majorAssignmentID string) []models.Team {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.teamsOfLocked(majorAssignmentID)
}

func (w *memWorld) teamsOfLocked(majorAssignmentID string) []models.Team {
	items := make([]models.Team, 0)
	for _, team := range w.teams {
		if team.MajorAssignmentID == majorAssignmentID {
			items = append(items, copyTeam(team))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (w *memWorld) notesFor(receiverID string) []models.Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []models.Notification
	for _, n := range w.notes {
		if n.ReceiverID == receiverID {
			out = append(out, n)
		}
	}
	return out
}

type memTxKey struct{}

type memTx struct{ w *memWorld }

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	st := t.w.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		t.w.restore(st)
		return err
	}
	return nil
}

type memAssignments struct{ w *memWorld }

func (s memAssignments) Create(_ context.Context, ma *models.MajorAssignment) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if ma.ID == "" {
		ma.ID = s.w.nextID("ma")
	}
	s.w.assignments[ma.ID] = copyAssignment(*ma)
	return nil
}

func (s memAssignments) Update(_ context.Context, ma *models.MajorAssignment) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if _, ok := s.w.assignments[ma.ID]; !ok {
		return sql.ErrNoRows
	}
	s.w.assignments[ma.ID] = copyAssignment(*ma)
	return nil
}

func (s memAssignments) GetByID(_ context.Context, id string) (*models.MajorAssignment, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	ma, ok := s.w.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := copyAssignment(ma)
	return &out, nil
}

func (s memAssignments) LockByID(ctx context.Context, id string) (*models.MajorAssignment, error) {
	return s.GetByID(ctx, id)
}

func (s memAssignments) List(_ context.Context, filter models.MajorAssignmentFilter) ([]models.MajorAssignment, int, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var items []models.MajorAssignment
	for _, ma := range s.w.assignments {
		if filter.ClassID != "" && ma.ClassID != filter.ClassID {
			continue
		}
		if filter.Active != nil && ma.Active != *filter.Active {
			continue
		}
		items = append(items, copyAssignment(ma))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, len(items), nil
}

func (s memAssignments) Delete(_ context.Context, id string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if _, ok := s.w.assignments[id]; !ok {
		return sql.ErrNoRows
	}
	for stageID, stage := range s.w.stages {
		if stage.MajorAssignmentID == id {
			s.w.deleteStageLocked(stageID)
		}
	}
	delete(s.w.assignments, id)
	return nil
}

type memTeams struct{ w *memWorld }

func (s memTeams) Create(_ context.Context, team *models.Team) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if err := s.w.failTeamCreate[team.LeaderID]; err != nil {
		return err
	}
	if _, taken := s.w.findTeamOf(team.MajorAssignmentID, team.LeaderID); taken {
		return repository.ErrDuplicate
	}
	if team.ID == "" {
		team.ID = s.w.nextID("team")
	}
	s.w.teams[team.ID] = copyTeam(*team)
	return nil
}

func (s memTeams) GetByID(_ context.Context, id string) (*models.Team, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	team, ok := s.w.teams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := copyTeam(team)
	return &out, nil
}

func (s memTeams) ListByMajorAssignment(_ context.Context, majorAssignmentID string) ([]models.Team, error) {
	return s.w.teamsOf(majorAssignmentID), nil
}

func (s memTeams) FindByUser(_ context.Context, majorAssignmentID, userID string) (*models.Team, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	team, ok := s.w.findTeamOf(majorAssignmentID, userID)
	if !ok {
		return nil, nil
	}
	return &team, nil
}

func (s memTeams) UpdateConfirmation(_ context.Context, team *models.Team) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	current, ok := s.w.teams[team.ID]
	if !ok {
		return sql.ErrNoRows
	}
	members := current.Members
	current = copyTeam(*team)
	current.Members = members
	s.w.teams[team.ID] = current
	return nil
}

func (s memTeams) AddMember(_ context.Context, member *models.TeamMember) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	team, ok := s.w.teams[member.TeamID]
	if !ok {
		return sql.ErrNoRows
	}
	for _, other := range s.w.teams {
		if other.MajorAssignmentID == member.MajorAssignmentID && other.HasMember(member.UserID) {
			return repository.ErrDuplicate
		}
	}
	if member.ID == "" {
		member.ID = s.w.nextID("member")
	}
	team.Members = append(append([]models.TeamMember{}, team.Members...), *member)
	s.w.teams[team.ID] = team
	return nil
}

func (s memTeams) RemoveMember(_ context.Context, teamID, userID string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	team, ok := s.w.teams[teamID]
	if !ok || !team.HasMember(userID) {
		return sql.ErrNoRows
	}
	kept := make([]models.TeamMember, 0, len(team.Members))
	for _, m := range team.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	team.Members = kept
	s.w.teams[teamID] = team
	rows := s.w.divisions[:0:0]
	for _, row := range s.w.divisions {
		if row.TeamID == teamID && row.MemberID != nil && *row.MemberID == userID {
			continue
		}
		rows = append(rows, row)
	}
	s.w.divisions = rows
	return nil
}

func (s memTeams) Delete(_ context.Context, id string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if _, ok := s.w.teams[id]; !ok {
		return sql.ErrNoRows
	}
	rows := s.w.divisions[:0:0]
	for _, row := range s.w.divisions {
		if row.TeamID != id {
			rows = append(rows, row)
		}
	}
	s.w.divisions = rows
	for k, v := range s.w.invitations {
		if v.TeamID == id {
			delete(s.w.invitations, k)
		}
	}
	for k, v := range s.w.leaves {
		if v.TeamID == id {
			delete(s.w.leaves, k)
		}
	}
	for k, v := range s.w.dissolves {
		if v.TeamID == id {
			delete(s.w.dissolves, k)
		}
	}
	delete(s.w.teams, id)
	return nil
}

type memInvitations struct{ w *memWorld }

func (s memInvitations) Create(_ context.Context, inv *models.TeamInvitation) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, other := range s.w.invitations {
		if other.TeamID == inv.TeamID && other.InviteeID == inv.InviteeID && other.Status == models.InvitationStatusPending {
			return repository.ErrDuplicate
		}
	}
	if inv.ID == "" {
		inv.ID = s.w.nextID("inv")
	}
	s.w.invitations[inv.ID] = *inv
	return nil
}

func (s memInvitations) GetByID(_ context.Context, id string) (*models.TeamInvitation, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	inv, ok := s.w.invitations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &inv, nil
}

func (s memInvitations) HasPending(_ context.Context, teamID, inviteeID string) (bool, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, inv := range s.w.invitations {
		if inv.TeamID == teamID && inv.InviteeID == inviteeID && inv.Status == models.InvitationStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s memInvitations) ListForInvitee(_ context.Context, inviteeID string, status models.InvitationStatus) ([]models.TeamInvitation, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var items []models.TeamInvitation
	for _, inv := range s.w.invitations {
		if inv.InviteeID == inviteeID && (status == "" || inv.Status == status) {
			items = append(items, inv)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s memInvitations) Resolve(_ context.Context, id string, status models.InvitationStatus, at time.Time) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	inv, ok := s.w.invitations[id]
	if !ok || inv.Status != models.InvitationStatusPending {
		return sql.ErrNoRows
	}
	inv.Status = status
	inv.RespondedAt = &at
	s.w.invitations[id] = inv
	return nil
}

type memLeaves struct{ w *memWorld }

func (s memLeaves) Create(_ context.Context, req *models.LeaveTeamRequest) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, other := range s.w.leaves {
		if other.TeamID == req.TeamID && other.MemberID == req.MemberID && other.Status.Open() {
			return repository.ErrDuplicate
		}
	}
	if req.ID == "" {
		req.ID = s.w.nextID("leave")
	}
	s.w.leaves[req.ID] = *req
	return nil
}

func (s memLeaves) GetByID(_ context.Context, id string) (*models.LeaveTeamRequest, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	req, ok := s.w.leaves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &req, nil
}

func (s memLeaves) HasOpen(_ context.Context, teamID, memberID string) (bool, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, req := range s.w.leaves {
		if req.TeamID == teamID && req.MemberID == memberID && req.Status.Open() {
			return true, nil
		}
	}
	return false, nil
}

func (s memLeaves) ListByTeam(_ context.Context, teamID string) ([]models.LeaveTeamRequest, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var items []models.LeaveTeamRequest
	for _, req := range s.w.leaves {
		if req.TeamID == teamID {
			items = append(items, req)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s memLeaves) Transition(_ context.Context, req *models.LeaveTeamRequest, from models.LeaveStatus) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	current, ok := s.w.leaves[req.ID]
	if !ok || current.Status != from {
		return sql.ErrNoRows
	}
	s.w.leaves[req.ID] = *req
	return nil
}

type memDissolves struct{ w *memWorld }

func (s memDissolves) Create(_ context.Context, req *models.DissolveTeamRequest) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, other := range s.w.dissolves {
		if other.TeamID == req.TeamID && other.Status == models.DissolveStatusPending {
			return repository.ErrDuplicate
		}
	}
	if req.ID == "" {
		req.ID = s.w.nextID("dissolve")
	}
	s.w.dissolves[req.ID] = *req
	return nil
}

func (s memDissolves) GetByID(_ context.Context, id string) (*models.DissolveTeamRequest, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	req, ok := s.w.dissolves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &req, nil
}

func (s memDissolves) HasPending(_ context.Context, teamID string) (bool, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, req := range s.w.dissolves {
		if req.TeamID == teamID && req.Status == models.DissolveStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s memDissolves) Resolve(_ context.Context, req *models.DissolveTeamRequest) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	current, ok := s.w.dissolves[req.ID]
	if !ok || current.Status != models.DissolveStatusPending {
		return sql.ErrNoRows
	}
	s.w.dissolves[req.ID] = *req
	return nil
}

type memStages struct{ w *memWorld }

func (s memStages) Create(_ context.Context, stage *models.Stage) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if stage.ID == "" {
		stage.ID = s.w.nextID("stage")
	}
	if stage.Status == "" {
		stage.Status = models.StageStatusPending
	}
	s.w.stages[stage.ID] = *stage
	return nil
}

func (s memStages) GetByID(_ context.Context, id string) (*models.Stage, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	stage, ok := s.w.stages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &stage, nil
}

func (s memStages) ListByMajorAssignment(_ context.Context, majorAssignmentID string) ([]models.Stage, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var items []models.Stage
	for _, stage := range s.w.stages {
		if stage.MajorAssignmentID == majorAssignmentID {
			items = append(items, stage)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s memStages) ListOpen(_ context.Context) ([]models.Stage, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var items []models.Stage
	for _, stage := range s.w.stages {
		ma, ok := s.w.assignments[stage.MajorAssignmentID]
		if !ok || !ma.Active || stage.IsLocked {
			continue
		}
		if stage.Status == models.StageStatusPending || stage.Status == models.StageStatusActive {
			items = append(items, stage)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s memStages) Transition(_ context.Context, id string, from []models.StageStatus, to models.StageStatus, at time.Time) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	stage, ok := s.w.stages[id]
	if !ok || stage.IsLocked || !statusIn(stage.Status, from) {
		return sql.ErrNoRows
	}
	stage.Status = to
	stage.UpdatedAt = at
	s.w.stages[id] = stage
	return nil
}

func (s memStages) SetLocked(_ context.Context, id string, locked bool, at time.Time) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	stage, ok := s.w.stages[id]
	if !ok {
		return sql.ErrNoRows
	}
	stage.IsLocked = locked
	stage.UpdatedAt = at
	s.w.stages[id] = stage
	return nil
}

func (s memStages) Delete(_ context.Context, id string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if _, ok := s.w.stages[id]; !ok {
		return sql.ErrNoRows
	}
	s.w.deleteStageLocked(id)
	return nil
}

func (w *memWorld) deleteStageLocked(id string) {
	rows := w.divisions[:0:0]
	for _, row := range w.divisions {
		if row.StageID != id {
			rows = append(rows, row)
		}
	}
	w.divisions = rows
	for k, role := range w.roles {
		if role.StageID == id {
			delete(w.roles, k)
		}
	}
	delete(w.stages, id)
}

func (s memStages) CreateRole(_ context.Context, role *models.DivisionRole) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if role.ID == "" {
		role.ID = s.w.nextID("role")
	}
	s.w.roles[role.ID] = *role
	return nil
}

func (s memStages) GetRole(_ context.Context, id string) (*models.DivisionRole, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	role, ok := s.w.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &role, nil
}

func (s memStages) ListRoles(_ context.Context, stageID string, requiredOnly bool) ([]models.DivisionRole, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var items []models.DivisionRole
	for _, role := range s.w.roles {
		if role.StageID == stageID && (!requiredOnly || role.IsRequired) {
			items = append(items, role)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s memStages) DeleteRole(_ context.Context, id string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if _, ok := s.w.roles[id]; !ok {
		return sql.ErrNoRows
	}
	rows := s.w.divisions[:0:0]
	for _, row := range s.w.divisions {
		if row.DivisionRoleID == nil || *row.DivisionRoleID != id {
			rows = append(rows, row)
		}
	}
	s.w.divisions = rows
	delete(s.w.roles, id)
	return nil
}

type memDivisions struct{ w *memWorld }

func (s memDivisions) ListByTeamStage(_ context.Context, teamID, stageID string) ([]models.TeamDivision, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var items []models.TeamDivision
	for _, row := range s.w.divisions {
		if row.TeamID == teamID && row.StageID == stageID {
			items = append(items, row)
		}
	}
	return items, nil
}

func (s memDivisions) ReplaceForTeamStage(_ context.Context, teamID, stageID string, rows []models.TeamDivision) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	kept := s.w.divisions[:0:0]
	for _, row := range s.w.divisions {
		if row.TeamID == teamID && row.StageID == stageID {
			continue
		}
		kept = append(kept, row)
	}
	for _, row := range rows {
		if row.ID == "" {
			row.ID = s.w.nextID("division")
		}
		kept = append(kept, row)
	}
	s.w.divisions = kept
	return nil
}

func (s memDivisions) FindByTeamRole(_ context.Context, teamID, roleID string) (*models.TeamDivision, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, row := range s.w.divisions {
		if row.TeamID == teamID && row.DivisionRoleID != nil && *row.DivisionRoleID == roleID {
			out := row
			return &out, nil
		}
	}
	return nil, nil
}

func (s memDivisions) Save(_ context.Context, row *models.TeamDivision) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if row.ID == "" {
		row.ID = s.w.nextID("division")
		s.w.divisions = append(s.w.divisions, *row)
		return nil
	}
	for i := range s.w.divisions {
		if s.w.divisions[i].ID == row.ID {
			s.w.divisions[i] = *row
			return nil
		}
	}
	return sql.ErrNoRows
}

type memUsers struct{ w *memWorld }

func (s memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	u, ok := s.w.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (s memUsers) ListClassStudents(_ context.Context, classID string) ([]models.User, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var items []models.User
	for _, id := range s.w.classStudents[classID] {
		items = append(items, s.w.users[id])
	}
	return items, nil
}

func (s memUsers) IsClassStudent(_ context.Context, classID, userID string) (bool, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, id := range s.w.classStudents[classID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type memNotifier struct{ w *memWorld }

func (n memNotifier) Notify(_ context.Context, notes ...models.Notification) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	n.w.notes = append(n.w.notes, notes...)
}

type memAudit struct{ w *memWorld }

func (a memAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	a.w.audits = append(a.w.audits, *log)
	return nil
}

// Fixture ids.
const (
	fxClass      = "class-1"
	fxAssignment = "ma-1"
	fxCreator    = "teacher-1"
	fxCoTeacher  = "teacher-2"
	fxOutsider   = "teacher-9"
)

var fxNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// seedWorld creates one active assignment (min 2, max 3) for a class of n
// students named stu-1..stu-n.
func seedWorld(t *testing.T, n int) *memWorld {
	t.Helper()
	w := newMemWorld()
	w.assignments[fxAssignment] = models.MajorAssignment{
		ID:          fxAssignment,
		ClassID:     fxClass,
		Title:       "Capstone",
		MinTeamSize: 2,
		MaxTeamSize: 3,
		CreatorID:   fxCreator,
		TeacherIDs:  []string{fxCoTeacher},
		Active:      true,
	}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("stu-%d", i)
		w.users[id] = models.User{ID: id, FullName: fmt.Sprintf("Student %d", i), Role: models.RoleStudent, Active: true}
		w.classStudents[fxClass] = append(w.classStudents[fxClass], id)
	}
	return w
}

func student(i int) *models.JWTClaims {
	return &models.JWTClaims{UserID: fmt.Sprintf("stu-%d", i), Role: models.RoleStudent, FullName: fmt.Sprintf("Student %d", i)}
}

func teacher(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleTeacher}
}

func newTestTeamService(w *memWorld) *TeamService {
	return NewTeamService(TeamServiceDeps{
		Tx:          memTx{w},
		Assignments: memAssignments{w},
		Teams:       memTeams{w},
		Invitations: memInvitations{w},
		Leaves:      memLeaves{w},
		Dissolves:   memDissolves{w},
		Stages:      memStages{w},
		Users:       memUsers{w},
		Notifier:    memNotifier{w},
		Audit:       memAudit{w},
	}, WithTeamClock(func() time.Time { return fxNow }))
}
