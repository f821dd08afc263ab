package transit

import (
	"fmt"
)

type MonitoredInfo struct {
	// Restrict to a Groundwork Monitor Status
	Status MonitorStatus `json:"status"`
	// The last status check time on this resource
	LastCheckTime *Timestamp `json:"lastCheckTime,omitempty"`
	// The next status check time on this resource
	NextCheckTime *Timestamp `json:"nextCheckTime,omitempty"`
	// Nagios plugin output string
	LastPluginOutput string `json:"lastPluginOutput,omitempty"`
}

// A MonitoredResource defines the current status and services of a device during a metrics scan.
type MonitoredResource struct {
	BaseResource
	MonitoredInfo
	// Services state collection
	Services []MonitoredService `json:"services"`
}

// String implements Stringer interface
func (p MonitoredResource) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s, %s, %s]",
		p.Name, p.Type, p.Status, p.LastCheckTime, p.LastPluginOutput, p.Services,
	)
}

func (p *MonitoredResource) AddService(svc MonitoredService) {
	p.Services = append(p.Services, svc)
}

// A MonitoredService represents a Groundwork Service creating during a metrics scan.
type MonitoredService struct {
	BaseInfo
	MonitoredInfo
	// metrics
	Metrics []TimeSeries `json:"metrics"`
}

func (p *MonitoredService) AddMetric(t TimeSeries) {
	p.Metrics = append(p.Metrics, t)
}

// String implements Stringer interface
func (p MonitoredService) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s, %s]",
		p.Name, p.Owner, p.Status, p.LastPluginOutput, p.Properties,
	)
}

// ResourcesWithServicesRequest defines the payload published per poll cycle
type ResourcesWithServicesRequest struct {
	Context   *TracerContext      `json:"context,omitempty"`
	Resources []MonitoredResource `json:"resources"`
	Groups    []ResourceGroup     `json:"groups,omitempty"`
}

func (p *ResourcesWithServicesRequest) AddResource(res MonitoredResource) {
	p.Resources = append(p.Resources, res)
}

func (p *ResourcesWithServicesRequest) AddResourceGroup(gr ResourceGroup) {
	p.Groups = append(p.Groups, gr)
}
