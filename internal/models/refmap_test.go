// internal/models/refmap_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefMap_SetKeepsInsertionOrder(t *testing.T) {
	var m RefMap[DraftName]
	m.Set(DraftMOA, "/a")
	m.Set(DraftAOA, "/b")
	m.Set(DraftMOA, "/c")

	assert.Equal(t, []DraftName{DraftMOA, DraftAOA}, m.Keys())
	ref, ok := m.Get(DraftMOA)
	assert.True(t, ok)
	assert.Equal(t, "/c", ref)
	assert.Equal(t, 2, m.Len())
}

func TestRefMap_MergeIsUnion(t *testing.T) {
	var drafts RefMap[DraftName]
	drafts.Set(DraftMOA, "/old/moa")

	drafts.MergeMap(map[DraftName]string{
		DraftMOA: "/new/moa",
		DraftAOA: "/new/aoa",
	})

	assert.ElementsMatch(t, []DraftName{DraftMOA, DraftAOA}, drafts.Keys())
	ref, _ := drafts.Get(DraftMOA)
	assert.Equal(t, "/new/moa", ref)
}

func TestRefMap_MergeIgnoresEmptyReferences(t *testing.T) {
	var drafts RefMap[DraftName]
	drafts.Set(DraftMOA, "/moa")

	drafts.MergeMap(map[DraftName]string{
		DraftMOA: "",
		DraftAOA: "",
	})

	assert.Equal(t, []DraftName{DraftMOA}, drafts.Keys())
	ref, _ := drafts.Get(DraftMOA)
	assert.Equal(t, "/moa", ref)
}

func TestRefMap_JSONPreservesDocumentOrder(t *testing.T) {
	raw := []byte(`{"PAN_CARD_NOMINEE":"n","PAN_CARD_MEMBER":"m","SKIPPED":null}`)

	var m RefMap[DocumentType]
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Equal(t, []DocumentType{"PAN_CARD_NOMINEE", "PAN_CARD_MEMBER"}, m.Keys())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"PAN_CARD_NOMINEE":"n","PAN_CARD_MEMBER":"m"}`, string(out))
}

func TestRefMap_UnmarshalRejectsNonObject(t *testing.T) {
	var m RefMap[DocumentType]
	err := json.Unmarshal([]byte(`["a"]`), &m)
	assert.Error(t, err)
}

func TestRefMap_ScanNullAndBytes(t *testing.T) {
	var m RefMap[DocumentType]
	require.NoError(t, m.Scan(nil))
	assert.Equal(t, 0, m.Len())

	require.NoError(t, m.Scan([]byte(`{"UTILITY_BILL":"s3://bill"}`)))
	assert.True(t, m.Has(DocUtilityBill))

	assert.Error(t, m.Scan(42))
}

func TestRefMap_CloneIsIndependent(t *testing.T) {
	var m RefMap[DraftName]
	m.Set(DraftMOA, "/moa")

	c := m.Clone()
	c.Set(DraftAOA, "/aoa")

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, c.Len())
}

func TestPartyDocument(t *testing.T) {
	assert.Equal(t, DocumentType("PAN_CARD_MEMBER"), PartyDocument(KindPAN, RoleMember, 0))
	assert.Equal(t, DocumentType("AADHAAR_CARD_DIRECTOR_2"), PartyDocument(KindAadhaar, RoleDirector, 2))
}

func TestJob_LogTextAndTerminal(t *testing.T) {
	job := &Job{ID: "j1", Status: JobInProgress}
	assert.False(t, job.IsTerminal())
	assert.Equal(t, "", job.LogText())

	job.Logs = append(job.Logs,
		JobLogEntry{JobID: "j1", Level: LevelInfo, Message: "first"},
		JobLogEntry{JobID: "j1", Level: LevelError, Message: "second"},
	)
	text := job.LogText()
	assert.Contains(t, text, "INFO first\n")
	assert.Contains(t, text, "ERROR second")

	job.Status = JobFailed
	assert.True(t, job.IsTerminal())
}
