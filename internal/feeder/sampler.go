// Package feeder samples the host and writes telemetry records to the dashboard link.
package feeder

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Dicklesworthstone/pcmonitor/internal/config"
	"github.com/Dicklesworthstone/pcmonitor/internal/model"
	"github.com/Dicklesworthstone/pcmonitor/internal/serialport"
	"github.com/Dicklesworthstone/pcmonitor/internal/telemetry"
)

// cpuSensors are tried in order; the first one present supplies the CPU temperature.
var cpuSensors = []string{"coretemp", "k10temp", "acpitz", "cpu-thermal", "nvme"}

// Sampler builds Stats from gopsutil reads and a best-effort nvidia-smi query.
type Sampler struct {
	Interval  time.Duration
	DiskScale float64
	Drives    []string
	EnableGPU bool

	prevTotal float64
	prevIdle  float64
	prevDisk  map[string]disk.IOCountersStat
	prevAt    time.Time

	// GPU async
	gpu   gpuReading
	gpuMu sync.RWMutex
}

type gpuReading struct {
	Util  float64
	TempC float64
	OK    bool
}

func New(cfg config.FeederConfig) *Sampler {
	scale := cfg.DiskScale
	if scale < 1 {
		scale = 1
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = config.DefaultFeeder().Interval
	}
	return &Sampler{
		Interval:  interval,
		DiskScale: scale,
		Drives:    cfg.Drives,
		EnableGPU: cfg.EnableGPU,
		prevDisk:  make(map[string]disk.IOCountersStat),
	}
}

// Run writes one record per interval to w until ctx is done. Write errors are
// logged and the next record is attempted, so a writer that reconnects on its
// own keeps the feed going.
func (s *Sampler) Run(ctx context.Context, w io.Writer) error {
	if s.EnableGPU {
		go s.gpuLoop(ctx)
	}
	s.cpuPercent() // prime the delta

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			st := s.Sample(t)
			line := telemetry.Format(st)
			if _, err := io.WriteString(w, line); err != nil {
				if !errors.Is(err, serialport.ErrWaiting) {
					log.Warn().Err(err).Msg("record not sent")
				}
				continue
			}
			log.Debug().Str("record", strings.TrimSpace(line)).Msg("sent")
		}
	}
}

// Sample reads the host once.
func (s *Sampler) Sample(now time.Time) model.Stats {
	st := model.Stats{
		CPU:     s.cpuPercent(),
		FreeC:   model.None(),
		FreeD:   model.None(),
		Updated: now,
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.Mem = vm.UsedPercent
	}

	st.DiskMBps = s.diskMBps(now)
	st.DiskPct = diskPercent(st.DiskMBps, s.DiskScale)

	if temps, err := host.SensorsTemperatures(); err == nil || len(temps) > 0 {
		st.CPUTempF = cpuTempF(temps)
	}

	s.gpuMu.RLock()
	g := s.gpu
	s.gpuMu.RUnlock()
	if g.OK {
		st.GPU = g.Util
		st.GPUTempF = model.Some(cToF(g.TempC))
	}

	if len(s.Drives) > 0 {
		st.FreeC = freeGB(s.Drives[0])
	}
	if len(s.Drives) > 1 {
		st.FreeD = freeGB(s.Drives[1])
	}
	st.IndoorTempF = st.CPUTempF
	return st
}

// CPU percentage from times delta.
func (s *Sampler) cpuPercent() (total float64) {
	times, _ := cpu.Times(false)
	if len(times) == 0 {
		return 0
	}
	cur := times[0]
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait
	if s.prevTotal > 0 {
		dt := curTotal - s.prevTotal
		di := curIdle - s.prevIdle
		if dt > 0 {
			total = clamp(100*(1-di/dt), 0, 100)
		}
	}
	s.prevTotal, s.prevIdle = curTotal, curIdle
	return total
}

// diskMBps is read plus write throughput across physical devices since the last call.
func (s *Sampler) diskMBps(now time.Time) float64 {
	counters, _ := disk.IOCounters()
	var mbps float64
	if !s.prevAt.IsZero() {
		mbps = throughput(s.prevDisk, counters, now.Sub(s.prevAt))
	}
	s.prevDisk = counters
	s.prevAt = now
	return mbps
}

func throughput(prev, cur map[string]disk.IOCountersStat, elapsed time.Duration) float64 {
	dt := elapsed.Seconds()
	if dt <= 0 {
		return 0
	}
	var bytes uint64
	for name, st := range cur {
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		p, ok := prev[name]
		if !ok {
			continue
		}
		if st.ReadBytes > p.ReadBytes {
			bytes += st.ReadBytes - p.ReadBytes
		}
		if st.WriteBytes > p.WriteBytes {
			bytes += st.WriteBytes - p.WriteBytes
		}
	}
	return float64(bytes) / (1024 * 1024) / dt
}

func diskPercent(mbps, scale float64) float64 {
	if scale < 1 {
		scale = 1
	}
	return clamp(mbps/scale*100, 0, 100)
}

func cpuTempF(temps []host.TemperatureStat) model.Optional {
	for _, prefix := range cpuSensors {
		for _, t := range temps {
			if strings.HasPrefix(t.SensorKey, prefix) && t.Temperature > 0 {
				return model.Some(cToF(t.Temperature))
			}
		}
	}
	return model.None()
}

func freeGB(path string) model.Optional {
	u, err := disk.Usage(path)
	if err != nil {
		log.Debug().Err(err).Str("drive", path).Msg("free space unavailable")
		return model.None()
	}
	return model.Some(float64(u.Free) / (1024 * 1024 * 1024))
}

func (s *Sampler) gpuLoop(ctx context.Context) {
	// Initial fetch
	s.updateGPU()

	// Poll GPU slower than the record rate; nvidia-smi is expensive.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updateGPU()
		}
	}
}

func (s *Sampler) updateGPU() {
	out, _ := runCmd(400*time.Millisecond, "nvidia-smi",
		"--query-gpu=utilization.gpu,temperature.gpu",
		"--format=csv,noheader,nounits")
	g := parseNvidiaSMI(out)
	s.gpuMu.Lock()
	s.gpu = g
	s.gpuMu.Unlock()
}

// parseNvidiaSMI reads the first GPU's "util, tempC" line.
func parseNvidiaSMI(out string) gpuReading {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 2 {
			continue
		}
		util, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		temp, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		return gpuReading{Util: clamp(util, 0, 100), TempC: temp, OK: true}
	}
	return gpuReading{}
}

func cToF(c float64) float64 { return c*9/5 + 32 }

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func runCmd(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}
