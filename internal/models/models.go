package models

import "time"

const (
	StatusValidated  = "Validated"
	StatusProcessing = "Processing"
	StatusProcessed  = "Processed"
)

const (
	RunRunning = "RUNNING"
	RunSuccess = "SUCCESS"
	RunFailed  = "FAILED"
)

type AssignmentRecord struct {
	TaskID             string            `json:"task_id"`
	Agency             string            `json:"agency"`
	DriverName         string            `json:"driver_name"`
	TrackingNumber     string            `json:"tracking_number"`
	Status             string            `json:"status"`
	CreateTime         time.Time         `json:"create_time"`
	CompleteTime       time.Time         `json:"complete_time"`
	DriverAssignedTime time.Time         `json:"driver_assigned_time"`
	AgencyAssignedTime time.Time         `json:"agency_assigned_time"`
	DeliveryDate       string            `json:"delivery_date"`
	Fields             map[string]string `json:"-"`
	Source             string            `json:"source"`
	Line               int               `json:"line"`

	Window      string `json:"window,omitempty"`
	WindowName  string `json:"window_name,omitempty"`
	CrossWindow bool   `json:"cross_window"`
}

// Field returns the raw value of any column of the source row.
func (r AssignmentRecord) Field(column string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[column]
}

// IsActive reports whether the warehouse still holds the task (Processing/Processed).
func (r AssignmentRecord) IsActive() bool {
	return r.Status == StatusProcessing || r.Status == StatusProcessed
}

type AssignmentTable struct {
	Columns  []string
	Records  []AssignmentRecord
	Warnings []string
}

type AuditRecord struct {
	Route            string    `json:"route"`
	ValidationStatus string    `json:"validation_status"`
	InitialOrders    int       `json:"initial_orders"`
	FinalOrders      int       `json:"final_orders"`
	ValidationStart  time.Time `json:"validation_start"`
	ValidationEnd    time.Time `json:"validation_end"`
	Operator         string    `json:"operator"`
	Line             int       `json:"line"`
}

func (r AuditRecord) Validated() bool {
	return r.ValidationStatus == StatusValidated
}

type AuditTable struct {
	Columns     []string
	Records     []AuditRecord
	HasOperator bool
	Warnings    []string
}

// Window is a shift range expressed in minutes after midnight.
type Window struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status"`
	WindowKey  string     `json:"window_key"`
	Inputs     []RunInput `json:"inputs"`
	Report     []byte     `json:"-"`
	Error      string     `json:"error,omitempty"`
}

type RunInput struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
	Rows        int    `json:"rows"`
}
