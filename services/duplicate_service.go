package services

import (
	"sort"
	"strings"
	"time"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// DuplicateKind identifies which detection pass reported a group
type DuplicateKind string

const (
	DuplicateSameEmail  DuplicateKind = "same_email"
	DuplicateSameUser   DuplicateKind = "same_assigned_user"
	DuplicateCrossEmail DuplicateKind = "cross_email"
)

// DuplicateGroup is a set of pick sets judged to be the same submission
// repeated. Membership only; choosing an authoritative member is the
// conflict resolver's job.
type DuplicateGroup struct {
	Kind      DuplicateKind     `json:"kind"`
	Signature string            `json:"signature"`
	Members   []*models.PickSet `json:"members"`
}

// DuplicateReport is the result of one detection run over a week's pick sets
type DuplicateReport struct {
	Groups          []DuplicateGroup `json:"groups"`
	TotalDuplicates int              `json:"total_duplicates"` // each group of size n contributes n-1
}

// detectionIndexes are the three lookup structures built once per run:
// pick sets by submitter email, by assigned user, and (unassigned sets only)
// by content signature.
type detectionIndexes struct {
	byEmail        map[string][]*models.PickSet
	byAssignedUser map[int][]*models.PickSet
	bySignature    map[string][]*models.PickSet
}

// DuplicateService finds pick sets that are content-identical across
// submitter identities
type DuplicateService struct {
	logger *logging.Logger
}

// NewDuplicateService creates a new duplicate detector
func NewDuplicateService() *DuplicateService {
	return &DuplicateService{logger: logging.WithPrefix("Duplicates")}
}

// DetectDuplicates runs the three detection passes over all pick sets for
// one season/week. A group reported by an earlier pass is never re-reported
// by a later one.
func (s *DuplicateService) DetectDuplicates(sets []*models.PickSet) *DuplicateReport {
	indexes := buildIndexes(sets)
	report := &DuplicateReport{}
	reported := make(map[string]bool)

	// Pass 1: repeated submissions under the same email
	for _, email := range sortedStringKeys(indexes.byEmail) {
		s.reportSignatureMatches(report, reported, DuplicateSameEmail, indexes.byEmail[email])
	}

	// Pass 2: different emails later assigned to the same user
	for _, userID := range sortedIntKeys(indexes.byAssignedUser) {
		s.reportSignatureMatches(report, reported, DuplicateSameUser, indexes.byAssignedUser[userID])
	}

	// Pass 3: identical content across distinct emails, none assigned yet
	for _, signature := range sortedStringKeys(indexes.bySignature) {
		group := indexes.bySignature[signature]
		if len(group) < 2 || countDistinctEmails(group) < 2 {
			continue
		}
		s.addGroup(report, reported, DuplicateGroup{
			Kind:      DuplicateCrossEmail,
			Signature: signature,
			Members:   group,
		})
	}

	s.logger.Infof("Detection run over %d pick set(s): %d group(s), %d duplicate(s)",
		len(sets), len(report.Groups), report.TotalDuplicates)
	return report
}

// reportSignatureMatches sub-groups one identity bucket by content signature
// and reports every signature shared by more than one set
func (s *DuplicateService) reportSignatureMatches(report *DuplicateReport, reported map[string]bool, kind DuplicateKind, bucket []*models.PickSet) {
	bySig := make(map[string][]*models.PickSet)
	for _, set := range bucket {
		sig := set.ContentSignature()
		bySig[sig] = append(bySig[sig], set)
	}

	for _, sig := range sortedStringKeys(bySig) {
		group := bySig[sig]
		if len(group) < 2 {
			continue
		}
		s.addGroup(report, reported, DuplicateGroup{
			Kind:      kind,
			Signature: sig,
			Members:   group,
		})
	}
}

// addGroup appends a group unless an earlier pass already reported the same
// membership
func (s *DuplicateService) addGroup(report *DuplicateReport, reported map[string]bool, group DuplicateGroup) {
	sortMembers(group.Members)

	key := membershipKey(group.Members)
	if reported[key] {
		return
	}
	reported[key] = true

	report.Groups = append(report.Groups, group)
	report.TotalDuplicates += len(group.Members) - 1
}

// buildIndexes constructs the three detection indexes in one scan
func buildIndexes(sets []*models.PickSet) detectionIndexes {
	indexes := detectionIndexes{
		byEmail:        make(map[string][]*models.PickSet),
		byAssignedUser: make(map[int][]*models.PickSet),
		bySignature:    make(map[string][]*models.PickSet),
	}

	for _, set := range sets {
		email := strings.ToLower(set.Email)
		indexes.byEmail[email] = append(indexes.byEmail[email], set)

		if set.AssignedUserID != nil {
			indexes.byAssignedUser[*set.AssignedUserID] = append(indexes.byAssignedUser[*set.AssignedUserID], set)
		} else {
			sig := set.ContentSignature()
			indexes.bySignature[sig] = append(indexes.bySignature[sig], set)
		}
	}

	return indexes
}

// membershipKey derives the "already reported" key for a group: the sorted
// (email, submittedAt) pairs of its members
func membershipKey(members []*models.PickSet) string {
	pairs := make([]string, len(members))
	for i, member := range members {
		pairs[i] = strings.ToLower(member.Email) + "@" + member.SubmittedAt.UTC().Format(time.RFC3339)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ";")
}

func countDistinctEmails(sets []*models.PickSet) int {
	seen := make(map[string]bool)
	for _, set := range sets {
		seen[strings.ToLower(set.Email)] = true
	}
	return len(seen)
}

func sortMembers(members []*models.PickSet) {
	sort.Slice(members, func(i, j int) bool {
		if members[i].Email != members[j].Email {
			return members[i].Email < members[j].Email
		}
		return members[i].SubmittedAt.Before(members[j].SubmittedAt)
	})
}

func sortedStringKeys(m map[string][]*models.PickSet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys(m map[int][]*models.PickSet) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
