package models

// Registry lists every entity in the clinical schema. Declaration order is
// parent-before-child where possible; the actual insert/delete orders are
// still derived from the foreign keys, never from this slice's order.
var Registry = []Entity{
	{
		Type:  EntityUsers,
		Table: "users",
		Columns: []Column{
			{Name: "id", Kind: KindInt},
			{Name: "username", Kind: KindText},
			{Name: "email", Kind: KindText},
			{Name: "password_hash", Kind: KindText},
			{Name: "first_name", Kind: KindText},
			{Name: "last_name", Kind: KindText},
			{Name: "role", Kind: KindText},
			{Name: "active", Kind: KindBool},
			{Name: "last_login", Kind: KindText},
			{Name: "created_at", Kind: KindText},
			{Name: "updated_at", Kind: KindText},
		},
	},
	{
		Type:  EntityStudents,
		Table: "students",
		Columns: []Column{
			{Name: "id", Kind: KindInt},
			{Name: "first_name", Kind: KindText},
			{Name: "last_name", Kind: KindText},
			{Name: "preferred_name", Kind: KindText},
			{Name: "pronouns", Kind: KindText},
			{Name: "grade_level", Kind: KindText},
			{Name: "monthly_services", Kind: KindInt},
			{Name: "active", Kind: KindBool},
			{Name: "anonymous_id", Kind: KindText},
			{Name: "anonymized", Kind: KindBool},
			{Name: "created_at", Kind: KindText},
			{Name: "updated_at", Kind: KindText},
		},
	},
	{
		Type:  EntityGoals,
		Table: "goals",
		Columns: []Column{
			{Name: "id", Kind: KindInt},
			{Name: "student_id", Kind: KindInt},
			{Name: "description", Kind: KindText},
			{Name: "active", Kind: KindBool},
			{Name: "target_date", Kind: KindText},
			{Name: "completion_criteria", Kind: KindText},
			{Name: "created_at", Kind: KindText},
			{Name: "updated_at", Kind: KindText},
		},
		ForeignKeys: []ForeignKey{
			{Field: "student_id", Parent: EntityStudents},
		},
	},
	{
		Type:  EntityObjectives,
		Table: "objectives",
		Columns: []Column{
			{Name: "id", Kind: KindInt},
			{Name: "goal_id", Kind: KindInt},
			{Name: "description", Kind: KindText},
			{Name: "accuracy_target", Kind: KindText},
			{Name: "notes", Kind: KindText},
			{Name: "active", Kind: KindBool},
			{Name: "created_at", Kind: KindText},
			{Name: "updated_at", Kind: KindText},
		},
		ForeignKeys: []ForeignKey{
			{Field: "goal_id", Parent: EntityGoals},
		},
	},
	{
		Type:  EntitySessions,
		Table: "sessions",
		Columns: []Column{
			{Name: "id", Kind: KindInt},
			{Name: "student_id", Kind: KindInt},
			{Name: "session_date", Kind: KindText},
			{Name: "start_time", Kind: KindText},
			{Name: "end_time", Kind: KindText},
			{Name: "session_type", Kind: KindText},
			{Name: "status", Kind: KindText},
			{Name: "location", Kind: KindText},
			{Name: "notes", Kind: KindText},
			{Name: "created_at", Kind: KindText},
			{Name: "updated_at", Kind: KindText},
		},
		ForeignKeys: []ForeignKey{
			{Field: "student_id", Parent: EntityStudents},
		},
	},
	{
		Type:  EntityTrialLogs,
		Table: "trial_logs",
		Columns: []Column{
			{Name: "id", Kind: KindInt},
			{Name: "student_id", Kind: KindInt},
			{Name: "objective_id", Kind: KindInt},
			{Name: "session_date", Kind: KindText},
			{Name: "independent", Kind: KindInt},
			{Name: "minimal_support", Kind: KindInt},
			{Name: "moderate_support", Kind: KindInt},
			{Name: "maximal_support", Kind: KindInt},
			{Name: "incorrect", Kind: KindInt},
			{Name: "session_notes", Kind: KindText},
			{Name: "environmental_factors", Kind: KindText},
			{Name: "created_at", Kind: KindText},
			{Name: "updated_at", Kind: KindText},
		},
		ForeignKeys: []ForeignKey{
			{Field: "student_id", Parent: EntityStudents},
			{Field: "objective_id", Parent: EntityObjectives, Nullable: true},
		},
	},
	{
		Type:  EntitySOAPNotes,
		Table: "soap_notes",
		Columns: []Column{
			{Name: "id", Kind: KindInt},
			{Name: "student_id", Kind: KindInt},
			{Name: "session_id", Kind: KindInt},
			{Name: "session_date", Kind: KindText},
			{Name: "subjective", Kind: KindText},
			{Name: "objective", Kind: KindText},
			{Name: "assessment", Kind: KindText},
			{Name: "plan", Kind: KindText},
			{Name: "clinician_signature", Kind: KindText},
			{Name: "anonymized", Kind: KindBool},
			{Name: "created_at", Kind: KindText},
			{Name: "updated_at", Kind: KindText},
		},
		ForeignKeys: []ForeignKey{
			{Field: "student_id", Parent: EntityStudents},
			{Field: "session_id", Parent: EntitySessions, Nullable: true},
		},
	},
}
