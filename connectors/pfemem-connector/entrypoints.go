package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sulefrederickjohne/pfememory/services"
	"github.com/sulefrederickjohne/pfememory/transit"
)

// Entrypoints returns the connector routes of the api
func (connector *PfeMemConnector) Entrypoints() []services.Entrypoint {
	return []services.Entrypoint{
		{URL: "/devices", Method: services.Get, Handler: connector.listDevices},
		{URL: "/devices/:device/items", Method: services.Get, Handler: connector.listItems},
		{URL: "/devices/:device/items/*item", Method: services.Get, Handler: connector.checkItemHandler},
		{URL: "/poll", Method: services.Post, Handler: connector.pollHandler},
	}
}

// @Description The following API endpoint returns the configured devices with the last poll outcome.
// @Tags    devices
// @Produce json
// @Success 200 {array} main.DevicePoll
// @Router  /devices [get]
func (connector *PfeMemConnector) listDevices(c *gin.Context) {
	devices := connector.Devices.Configured()
	polls := make([]DevicePoll, 0, len(devices))
	for _, device := range devices {
		poll, ok := connector.LastPoll(device.ResourceName())
		if !ok {
			poll = DevicePoll{
				Device: device.ResourceName(),
				Target: device.Target,
				Status: transit.HostPending,
			}
		}
		polls = append(polls, poll)
	}
	c.JSON(http.StatusOK, polls)
}

type itemDTO struct {
	Item    string `json:"item"`
	Service string `json:"service"`
}

func (connector *PfeMemConnector) lastPoll(c *gin.Context) (DevicePoll, bool) {
	device := c.Param("device")
	if _, ok := connector.Devices.Lookup(device); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown device"})
		return DevicePoll{}, false
	}
	poll, ok := connector.LastPoll(device)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not polled yet"})
		return DevicePoll{}, false
	}
	return poll, true
}

// @Description The following API endpoint returns the discovered items of the device.
// @Tags    devices
// @Produce json
// @Param   device path string true "Device name"
// @Success 200 {array} main.itemDTO
// @Failure 404
// @Router  /devices/{device}/items [get]
func (connector *PfeMemConnector) listItems(c *gin.Context) {
	poll, ok := connector.lastPoll(c)
	if !ok {
		return
	}
	items := connector.Plugin.Discover(poll.Section)
	dto := make([]itemDTO, 0, len(items))
	for _, item := range items {
		dto = append(dto, itemDTO{Item: item, Service: connector.Plugin.ServiceName(item)})
	}
	c.JSON(http.StatusOK, dto)
}

// @Description The following API endpoint returns the check results of the item.
// @Tags    devices
// @Produce json
// @Param   device path string true "Device name"
// @Param   item   path string true "Item name"
// @Success 200 {object} pfemem.Report
// @Failure 404
// @Router  /devices/{device}/items/{item} [get]
func (connector *PfeMemConnector) checkItemHandler(c *gin.Context) {
	poll, ok := connector.lastPoll(c)
	if !ok {
		return
	}
	/* item names hold slashes, the wildcard param keeps the leading one */
	item := strings.TrimPrefix(c.Param("item"), "/")
	if _, ok := poll.Section[item]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown item"})
		return
	}
	c.JSON(http.StatusOK, connector.Plugin.Report(item, poll.Section))
}

// @Description The following API endpoint polls the devices and publishes the resources.
// @Tags    devices
// @Produce json
// @Success 200 {object} transit.ResourcesWithServicesRequest
// @Failure 503
// @Router  /poll [post]
func (connector *PfeMemConnector) pollHandler(c *gin.Context) {
	request, err := connector.Poll(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Msg("poll requested by api failed to publish")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, request)
}
