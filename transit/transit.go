package transit

import (
	"fmt"
	"strconv"
)

// VersionString defines type of constant
type VersionString string

// ModelVersion defines versioning
const (
	ModelVersion VersionString = "1.0.0"
)

// UnitType - Supported units are a subset of The Unified Code for Units of Measure
type UnitType string

// Supported units
const (
	UnitCounter UnitType = "1"
	PercentFree UnitType = "%{free}"
)

// ValueType defines the data type of the value of a metric
type ValueType string

// Data type of the value of a metric
const (
	IntegerType ValueType = "IntegerType"
	DoubleType  ValueType = "DoubleType"
	StringType  ValueType = "StringType"
)

// MonitorStatus represents Groundwork service monitor status
type MonitorStatus string

// Groundwork Standard Monitored Resource Statuses
const (
	ServiceOk                  MonitorStatus = "SERVICE_OK"
	ServiceWarning             MonitorStatus = "SERVICE_WARNING"
	ServiceUnscheduledCritical MonitorStatus = "SERVICE_UNSCHEDULED_CRITICAL"
	ServicePending             MonitorStatus = "SERVICE_PENDING"
	ServiceScheduledCritical   MonitorStatus = "SERVICE_SCHEDULED_CRITICAL"
	ServiceUnknown             MonitorStatus = "SERVICE_UNKNOWN"
	HostUp                     MonitorStatus = "HOST_UP"
	HostWarning                MonitorStatus = "HOST_WARNING"
	HostPending                MonitorStatus = "HOST_PENDING"
	HostUnreachable            MonitorStatus = "HOST_UNREACHABLE"
)

// ResourceType defines the resource type
type ResourceType string

// The resource type uniquely defining the resource type
const (
	ResourceTypeHost          ResourceType = "host"
	ResourceTypeService       ResourceType = "service"
	ResourceTypeNetworkDevice ResourceType = "network-device"
)

// GroupType defines the foundation group type
type GroupType string

// The group type uniquely defining corresponding foundation group type
const (
	HostGroup GroupType = "HostGroup"
)

// MetricSampleType defines TimeSeries Metric Sample Possible Types
type MetricSampleType string

// TimeSeries Metric Sample Possible Types
const (
	Value    MetricSampleType = "Value"
	Warning  MetricSampleType = "Warning"
	Critical MetricSampleType = "Critical"
)

// TimeInterval defines a closed time interval [startTime, endTime]
type TimeInterval struct {
	EndTime   *Timestamp `json:"endTime"`
	StartTime *Timestamp `json:"startTime,omitempty"`
}

// TypedValue defines a single strongly-typed value.
type TypedValue struct {
	ValueType    ValueType `json:"valueType"`
	DoubleValue  *float64  `json:"doubleValue,omitempty"`
	IntegerValue *int64    `json:"integerValue,omitempty"`
	StringValue  *string   `json:"stringValue,omitempty"`
}

// String implements Stringer interface
func (value TypedValue) String() string {
	switch value.ValueType {
	case IntegerType:
		return strconv.FormatInt(*value.IntegerValue, 10)
	case StringType:
		return *value.StringValue
	case DoubleType:
		return fmt.Sprintf("%f", *value.DoubleValue)
	}
	return ""
}

// NewTypedValue returns a reference to TypedValue or nil
func NewTypedValue(v any) *TypedValue {
	p := new(TypedValue)
	switch v := v.(type) {
	case int:
		p.ValueType = IntegerType
		p.IntegerValue = new(int64)
		*p.IntegerValue = int64(v)
	case int64:
		p.ValueType = IntegerType
		p.IntegerValue = new(int64)
		*p.IntegerValue = v
	case float64:
		p.ValueType = DoubleType
		p.DoubleValue = new(float64)
		*p.DoubleValue = v
	case string:
		p.ValueType = StringType
		p.StringValue = new(string)
		*p.StringValue = v
	case TypedValue:
		*p = v
	default:
		return nil
	}
	return p
}

func (value TypedValue) float() float64 {
	switch value.ValueType {
	case IntegerType:
		return float64(*value.IntegerValue)
	case DoubleType:
		return *value.DoubleValue
	}
	return 0
}

// ThresholdValue describes threshold
type ThresholdValue struct {
	SampleType MetricSampleType `json:"sampleType"`
	Label      string           `json:"label"`
	Value      *TypedValue      `json:"value"`
}

// TimeSeries defines a single Metric Sample, its time interval, and 0 or more thresholds
type TimeSeries struct {
	MetricName string            `json:"metricName"`
	SampleType MetricSampleType  `json:"sampleType,omitempty"`
	Interval   *TimeInterval     `json:"interval"`
	Value      *TypedValue       `json:"value"`
	Tags       map[string]string `json:"tags,omitempty"`
	Unit       UnitType          `json:"unit,omitempty"`
	Thresholds *[]ThresholdValue `json:"thresholds,omitempty"`
}

// CreateTag sets the tag
func (p *TimeSeries) CreateTag(name string, value string) {
	if p.Tags == nil {
		p.Tags = make(map[string]string)
	}
	p.Tags[name] = value
}

// BaseInfo defines common fields of resources and services
type BaseInfo struct {
	// The unique name of the resource
	Name string `json:"name"`
	// Type: Required. The resource type of the resource
	Type ResourceType `json:"type"`
	// Owner relationship for associations like host->service
	Owner string `json:"owner,omitempty"`
	// Optional description of this resource
	Description string `json:"description,omitempty"`
	// Foundation Properties
	Properties map[string]TypedValue `json:"properties,omitempty"`
}

// SetProperty sets the property, values of unsupported types are skipped
func (p *BaseInfo) SetProperty(k string, v any) {
	t := NewTypedValue(v)
	if t == nil {
		return
	}
	if p.Properties == nil {
		p.Properties = make(map[string]TypedValue)
	}
	p.Properties[k] = *t
}

type BaseResource struct {
	BaseInfo
	// Device (usually IP address), leave empty if not available, will default to name
	Device string `json:"device,omitempty"`
}

// ToResourceRef returns the reference for groups
func (p BaseResource) ToResourceRef() ResourceRef {
	return ResourceRef{
		Name: p.Name,
		Type: p.Type,
	}
}

// ResourceRef references a resource in a group collection
type ResourceRef struct {
	Name  string       `json:"name"`
	Type  ResourceType `json:"type,omitempty"`
	Owner string       `json:"owner,omitempty"`
}

// ResourceGroup defines group entity
type ResourceGroup struct {
	GroupName   string        `json:"groupName"`
	Type        GroupType     `json:"type"`
	Description string        `json:"description,omitempty"`
	Resources   []ResourceRef `json:"resources"`
}

// TracerContext describes a Transit call
type TracerContext struct {
	AppType    string        `json:"appType"`
	AgentID    string        `json:"agentId"`
	TraceToken string        `json:"traceToken"`
	TimeStamp  *Timestamp    `json:"timeStamp"`
	Version    VersionString `json:"version"`
}

// AgentIdentity defines Agent Identity
type AgentIdentity struct {
	AgentID string `json:"agentId" yaml:"agentId"`
	AppName string `json:"appName" yaml:"appName"`
	AppType string `json:"appType" yaml:"appType"`
}

// MonitorStatusWeightService defines weight of Monitor Status for multi-state comparison
var MonitorStatusWeightService = map[MonitorStatus]int{
	ServiceOk:                  0,
	ServicePending:             10,
	ServiceUnknown:             20,
	ServiceWarning:             30,
	ServiceScheduledCritical:   50,
	ServiceUnscheduledCritical: 100,
}

// CalculateServiceStatus returns the worst status of metrics having thresholds
func CalculateServiceStatus(metrics []TimeSeries) MonitorStatus {
	if len(metrics) == 0 {
		return ServiceUnknown
	}
	previousStatus := ServiceOk
	for _, metric := range metrics {
		if metric.Thresholds == nil {
			continue
		}
		var warning, critical *TypedValue
		for _, threshold := range *metric.Thresholds {
			switch threshold.SampleType {
			case Warning:
				warning = threshold.Value
			case Critical:
				critical = threshold.Value
			}
		}
		status := CalculateStatus(metric.Value, warning, critical)
		if MonitorStatusWeightService[status] > MonitorStatusWeightService[previousStatus] {
			previousStatus = status
		}
	}
	return previousStatus
}

// CalculateStatus compares value with thresholds.
// Warning above critical means a reverse comparison (low values are bad).
func CalculateStatus(value *TypedValue, warning *TypedValue, critical *TypedValue) MonitorStatus {
	if value == nil || (warning == nil && critical == nil) {
		return ServiceOk
	}
	v := value.float()
	switch {
	case warning != nil && critical != nil && warning.float() > critical.float():
		if v <= critical.float() {
			return ServiceUnscheduledCritical
		}
		if v <= warning.float() {
			return ServiceWarning
		}
	case critical != nil && v >= critical.float():
		return ServiceUnscheduledCritical
	case warning != nil && v >= warning.float():
		return ServiceWarning
	}
	return ServiceOk
}

// CalculateResourceStatus returns HostWarning if any service is not ok
func CalculateResourceStatus(services []MonitoredService) MonitorStatus {
	if len(services) == 0 {
		return HostPending
	}
	for _, svc := range services {
		if svc.Status != ServiceOk {
			return HostWarning
		}
	}
	return HostUp
}
