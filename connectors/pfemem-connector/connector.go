package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/sulefrederickjohne/pfememory/config"
	"github.com/sulefrederickjohne/pfememory/connectors"
	"github.com/sulefrederickjohne/pfememory/connectors/pfemem"
	"github.com/sulefrederickjohne/pfememory/connectors/pfemem/clients"
	"github.com/sulefrederickjohne/pfememory/services"
	"github.com/sulefrederickjohne/pfememory/taskqueue"
	"github.com/sulefrederickjohne/pfememory/tracing"
	"github.com/sulefrederickjohne/pfememory/transit"
)

// Fetcher reads the plugin table from the device
type Fetcher interface {
	Fetch(ctx context.Context, target clients.Target, plugin pfemem.Plugin) ([]pfemem.Row, error)
}

// PublishFunc sends the payload to the subject
type PublishFunc func(subject string, msg []byte) error

// DevicePoll is the outcome of the device poll kept for the api
type DevicePoll struct {
	Device    string                `json:"device"`
	Target    string                `json:"target"`
	Status    transit.MonitorStatus `json:"status"`
	CheckTime *transit.Timestamp    `json:"lastCheckTime,omitempty"`
	Error     string                `json:"error,omitempty"`
	Items     int                   `json:"items"`

	Section  pfemem.Section            `json:"-"`
	Resource transit.MonitoredResource `json:"-"`
}

// PfeMemConnector polls the configured devices
type PfeMemConnector struct {
	Connector config.Connector
	Devices   config.Devices
	Plugin    pfemem.Plugin
	Fetcher   Fetcher
	Metrics   *services.Metrics
	Publish   PublishFunc

	polls *cache.Cache
	queue *taskqueue.TaskQueue

	mu              sync.Mutex
	inventoryChksum []byte
}

const subjPoll taskqueue.Subject = "poll"

// NewPfeMemConnector returns connector, publishing is off until Publish is set
func NewPfeMemConnector(cfg *config.Config, fetcher Fetcher, metrics *services.Metrics) *PfeMemConnector {
	interval := cfg.Connector.CheckInterval
	connector := &PfeMemConnector{
		Connector: cfg.Connector,
		Devices:   cfg.Devices,
		Plugin:    pfemem.PfeMemory,
		Fetcher:   fetcher,
		Metrics:   metrics,
		polls:     cache.New(interval*2, interval),
	}
	/* scheduled and requested polls run one by one */
	connector.queue = taskqueue.NewTaskQueue(
		taskqueue.WithCapacity(2),
		taskqueue.WithHandlers(map[taskqueue.Subject]taskqueue.Handler{
			subjPoll: func(task *taskqueue.Task) error {
				request, err := connector.poll(task.Ctx)
				task.Result = request
				return err
			},
		}),
		taskqueue.WithAlarm(interval, func(task *taskqueue.Task) error {
			log.Warn().
				Uint64("task", task.Idx).
				Dur("since", time.Since(task.Queued)).
				Msg("poll takes longer than check interval")
			return nil
		}),
		taskqueue.WithDebugger(func(tasks []taskqueue.Task) {
			for _, task := range tasks {
				log.Debug().Uint64("task", task.Idx).Time("queued", task.Queued).Msg("recent poll")
			}
		}),
	)
	return connector
}

// Poll queues the poll cycle and waits for the published request
func (connector *PfeMemConnector) Poll(ctx context.Context) (*transit.ResourcesWithServicesRequest, error) {
	task, err := connector.queue.PushSync(ctx, subjPoll)
	if task == nil || ctx.Err() != nil {
		return nil, err
	}
	request, _ := task.Result.(*transit.ResourcesWithServicesRequest)
	return request, err
}

// poll collects the devices and publishes the request
func (connector *PfeMemConnector) poll(ctx context.Context) (*transit.ResourcesWithServicesRequest, error) {
	request := connector.CollectMetrics(ctx)
	if connector.Publish == nil {
		return request, nil
	}

	_, span := tracing.StartTraceSpan(ctx, "Publish")
	payload, err := json.Marshal(request)
	if err == nil {
		err = connector.Publish(connector.Connector.NatsSubject, payload)
	}
	tracing.EndTraceSpan(span,
		tracing.TraceAttrStr("subject", connector.Connector.NatsSubject),
		tracing.TraceAttrPayloadLen(payload),
		tracing.TraceAttrError(err),
	)
	if err != nil {
		log.Err(err).Msg("could not publish resources")
		return request, err
	}
	log.Debug().
		Int("resources", len(request.Resources)).
		Str("traceToken", request.Context.TraceToken).
		Msg("published resources")
	return request, nil
}

// CollectMetrics polls the devices concurrently
func (connector *PfeMemConnector) CollectMetrics(ctx context.Context) *transit.ResourcesWithServicesRequest {
	ctx, span := tracing.StartTraceSpan(ctx, "CollectMetrics")
	start := time.Now()
	devices := connector.Devices.Configured()

	polls := make([]DevicePoll, len(devices))
	var wg sync.WaitGroup
	for i, device := range devices {
		wg.Go(func() {
			polls[i] = connector.pollDevice(ctx, device)
		})
	}
	wg.Wait()

	request := &transit.ResourcesWithServicesRequest{Context: connector.tracerContext()}
	group := transit.ResourceGroup{
		GroupName:   connector.Connector.AppName,
		Type:        transit.HostGroup,
		Description: "PFE memory of polled devices",
	}
	for _, poll := range polls {
		connector.polls.SetDefault(poll.Device, poll)
		request.AddResource(poll.Resource)
		group.Resources = append(group.Resources, poll.Resource.ToResourceRef())
	}
	if len(group.Resources) > 0 {
		request.AddResourceGroup(group)
	}
	connector.checkInventory(request.Resources)
	if connector.Metrics != nil {
		connector.Metrics.ObservePoll(start)
	}

	tracing.EndTraceSpan(span,
		tracing.TraceAttrInt("devices", len(devices)),
		tracing.TraceAttrStr("traceToken", request.Context.TraceToken),
	)
	log.Info().Int("devices", len(devices)).Dur("took", time.Since(start)).Msg("poll completed")
	return request
}

func (connector *PfeMemConnector) tracerContext() *transit.TracerContext {
	traceToken, err := uuid.GenerateUUID()
	if err != nil {
		log.Warn().Err(err).Msg("could not generate trace token")
	}
	return &transit.TracerContext{
		AppType:    connector.Connector.AppType,
		AgentID:    connector.Connector.AgentID,
		TraceToken: traceToken,
		TimeStamp:  transit.NewTimestamp(),
		Version:    transit.ModelVersion,
	}
}

func (connector *PfeMemConnector) pollDevice(ctx context.Context, device config.Device) DevicePoll {
	ctx, span := tracing.StartTraceSpan(ctx, "pollDevice")
	name := device.ResourceName()
	poll := DevicePoll{Device: name, Target: device.Target}

	rows, err := connector.Fetcher.Fetch(ctx, clients.NewTarget(device, connector.Connector.Snmp), connector.Plugin)
	if err != nil {
		log.Warn().Err(err).Str("device", name).Msg("could not poll device")
		resource, _ := connectors.CreateResource(name)
		resource.Status = transit.HostUnreachable
		resource.LastPluginOutput = err.Error()
		poll.Error = err.Error()
		poll.Resource = *resource
		if connector.Metrics != nil {
			connector.Metrics.ObservePollError(name)
		}
	} else {
		poll.Section = connector.Plugin.Parse(rows)
		if connector.Metrics != nil {
			connector.Metrics.ResetDevice(name)
		}
		items := connector.Plugin.Discover(poll.Section)
		svcs := make([]transit.MonitoredService, 0, len(items))
		for _, item := range items {
			svcs = append(svcs, connector.checkItem(name, item, poll.Section))
		}
		resource, _ := connectors.CreateResource(name, svcs)
		resource.LastPluginOutput = fmt.Sprintf("%d items", len(items))
		poll.Items = len(items)
		poll.Resource = *resource
	}
	poll.Resource.Device = device.Target
	poll.Resource.NextCheckTime = poll.Resource.LastCheckTime.Add(connector.Connector.CheckInterval)
	poll.Status = poll.Resource.Status
	poll.CheckTime = poll.Resource.LastCheckTime

	tracing.EndTraceSpan(span,
		tracing.TraceAttrDevice(name),
		tracing.TraceAttrStr("status", string(poll.Status)),
		tracing.TraceAttrInt("items", poll.Items),
		tracing.TraceAttrError(err),
	)
	return poll
}

func (connector *PfeMemConnector) checkItem(resource, item string, section pfemem.Section) transit.MonitoredService {
	report := connector.Plugin.Report(item, section)
	record := section[item]

	var metrics []transit.TimeSeries
	pools, err := record.Pools()
	if err != nil {
		log.Debug().Err(err).Str("device", resource).Str("item", item).Msg("skipped invalid readings")
	}
	for _, pool := range pools {
		metricName := fmt.Sprintf("%s_free_mic%d", strings.ToLower(pool.Name), pool.MIC)
		if metric := freeMetric(metricName, pool.Free); metric != nil {
			metric.CreateTag("card", record.CardLabel)
			metrics = append(metrics, *metric)
		}
		if connector.Metrics != nil {
			connector.Metrics.SetFree(resource, record.CardLabel, pool.MIC, pool.Name, pool.Free)
		}
	}

	service, _ := connectors.CreateService(report.Service, resource, metrics)
	service.Status = serviceStatus(report.State)
	service.LastPluginOutput = report.Output()
	service.Description = item
	service.SetProperty("card", record.CardLabel)
	if details := report.Details(); details != "" {
		service.SetProperty("details", details)
	}
	service.NextCheckTime = service.LastCheckTime.Add(connector.Connector.CheckInterval)

	if connector.Metrics != nil {
		for _, res := range report.Results {
			connector.Metrics.ObserveResult(res.State.String())
		}
		if report.Error != "" {
			connector.Metrics.ObserveResult(pfemem.StateUnknown.String())
		}
	}
	return *service
}

// freeMetric builds the percent-free metric with fixed levels
func freeMetric(name string, value int) *transit.TimeSeries {
	warning, _ := connectors.CreateWarningThreshold(name+"_wn", pfemem.WarnLevel)
	critical, _ := connectors.CreateCriticalThreshold(name+"_cr", pfemem.CritLevel)
	metric, err := connectors.CreateMetric(name, value, transit.PercentFree, *warning, *critical)
	if err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("could not create metric")
		return nil
	}
	return metric
}

func serviceStatus(state pfemem.State) transit.MonitorStatus {
	switch state {
	case pfemem.StateOK:
		return transit.ServiceOk
	case pfemem.StateWarn:
		return transit.ServiceWarning
	case pfemem.StateCrit:
		return transit.ServiceUnscheduledCritical
	}
	return transit.ServiceUnknown
}

// checkInventory logs the discovered services when they change
func (connector *PfeMemConnector) checkInventory(resources []transit.MonitoredResource) {
	inventory := make(map[string][]string, len(resources))
	for _, res := range resources {
		names := make([]string, 0, len(res.Services))
		for _, svc := range res.Services {
			names = append(names, svc.Name)
		}
		slices.Sort(names)
		inventory[res.Name] = names
	}
	chksum, err := config.Hashsum(inventory)
	if err != nil {
		log.Warn().Err(err).Msg("could not calculate inventory hashsum")
		return
	}

	connector.mu.Lock()
	defer connector.mu.Unlock()
	if bytes.Equal(connector.inventoryChksum, chksum) {
		return
	}
	connector.inventoryChksum = chksum
	log.Info().Interface("inventory", inventory).Msg("inventory changed")
}

// LastPoll returns the cached poll of the device
func (connector *PfeMemConnector) LastPoll(device string) (DevicePoll, bool) {
	if v, ok := connector.polls.Get(device); ok {
		return v.(DevicePoll), true
	}
	return DevicePoll{}, false
}
