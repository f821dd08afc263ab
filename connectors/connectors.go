package connectors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/sulefrederickjohne/pfememory/transit"
)

var (
	ErrUnsupportedValue = errors.New("unsupported value type")
	ErrUnsupportedArg   = errors.New("unsupported arg type")
)

// CreateMetric
//
//	required parameters: name, value
//	optional parameters: unit, interval, thresholds
//
// CreateMetric("nh_free_mic0", 30)                      // integer value
// CreateMetric("nh_free_mic0", 30, transit.PercentFree) // with optional Unit
// CreateMetric("nh_free_mic0", 30, interval)            // with optional interval
// CreateMetric("nh_free_mic0", 30, *warning, *critical) // with thresholds
func CreateMetric(name string, value any, args ...any) (*transit.TimeSeries, error) {
	typedValue := transit.NewTypedValue(value)
	if typedValue == nil || typedValue.ValueType == transit.StringType {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
	metric := transit.TimeSeries{
		MetricName: name,
		SampleType: transit.Value,
		Value:      typedValue,
	}
	var thresholds []transit.ThresholdValue
	for _, arg := range args {
		switch arg := arg.(type) {
		case transit.UnitType:
			metric.Unit = arg
		case *transit.TimeInterval:
			metric.Interval = arg
		case transit.ThresholdValue:
			thresholds = append(thresholds, arg)
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedArg, arg)
		}
	}
	if len(thresholds) > 0 {
		metric.Thresholds = &thresholds
	}
	if metric.Interval == nil {
		now := transit.NewTimestamp()
		metric.Interval = &transit.TimeInterval{
			EndTime:   now,
			StartTime: now,
		}
	}
	if metric.Unit == "" {
		metric.Unit = transit.UnitCounter
	}
	return &metric, nil
}

// CreateWarningThreshold returns threshold of Warning sample type
func CreateWarningThreshold(label string, value any) (*transit.ThresholdValue, error) {
	return CreateThreshold(transit.Warning, label, value)
}

// CreateCriticalThreshold returns threshold of Critical sample type
func CreateCriticalThreshold(label string, value any) (*transit.ThresholdValue, error) {
	return CreateThreshold(transit.Critical, label, value)
}

func CreateThreshold(thresholdType transit.MetricSampleType, label string, value any) (*transit.ThresholdValue, error) {
	typedValue := transit.NewTypedValue(value)
	if typedValue == nil || typedValue.ValueType == transit.StringType {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
	return &transit.ThresholdValue{
		SampleType: thresholdType,
		Label:      label,
		Value:      typedValue,
	}, nil
}

// CreateService
// required params: name, owner(resource)
// optional params: metrics
func CreateService(name string, owner string, args ...any) (*transit.MonitoredService, error) {
	service := transit.MonitoredService{
		BaseInfo: transit.BaseInfo{
			Name:  name,
			Type:  transit.ResourceTypeService,
			Owner: owner,
		},
		MonitoredInfo: transit.MonitoredInfo{
			Status:        transit.ServiceOk,
			LastCheckTime: transit.NewTimestamp(),
		},
	}
	for _, arg := range args {
		switch arg := arg.(type) {
		case []transit.TimeSeries:
			service.Metrics = arg
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedArg, arg)
		}
	}
	if service.Metrics != nil {
		service.Status = transit.CalculateServiceStatus(service.Metrics)
	}
	return &service, nil
}

// CreateResource
// required params: name
// optional params: services
func CreateResource(name string, args ...any) (*transit.MonitoredResource, error) {
	resource := transit.MonitoredResource{
		BaseResource: transit.BaseResource{
			BaseInfo: transit.BaseInfo{
				Name: name,
				Type: transit.ResourceTypeHost,
			},
		},
		MonitoredInfo: transit.MonitoredInfo{
			Status:        transit.HostUp,
			LastCheckTime: transit.NewTimestamp(),
		},
	}
	for _, arg := range args {
		switch arg := arg.(type) {
		case []transit.MonitoredService:
			resource.Services = arg
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedArg, arg)
		}
	}
	resource.Status = transit.CalculateResourceStatus(resource.Services)
	return &resource, nil
}

// SigTermContext returns context canceled on Ctrl+C or SIGTERM
func SigTermContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// StartScheduler runs the job on the cron spec.
// Spec accepts the seconds field and descriptors like "@every 1m".
// Overlapping runs are skipped, panics are recovered.
func StartScheduler(spec string, job func()) (*cron.Cron, error) {
	logger := cron.PrintfLogger(&log.Logger)
	sch := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := sch.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("could not schedule %q: %w", spec, err)
	}
	sch.Start()
	log.Info().Str("spec", spec).Msg("scheduler started")
	return sch, nil
}
