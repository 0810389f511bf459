// Package sensors keeps the last decoded value of each sensor class together
// with a fresh flag. The dispatcher is the only writer and sets the flag on
// every update. Each record has a single consumer, which clears the flag as
// it reads (WindPacked, Wind, ...). Peek reads everything without clearing.
package sensors

import "sync"

type record[T any] struct {
	value T
	fresh bool
}

// Reading is a record value with its fresh flag, as returned by Peek.
type Reading[T any] struct {
	Value T    `json:"value"`
	Fresh bool `json:"fresh"`
}

func (r *record[T]) reading() Reading[T] {
	return Reading[T]{Value: r.value, Fresh: r.fresh}
}

func (r *record[T]) take() (T, bool) {
	v, fresh := r.value, r.fresh
	r.fresh = false
	return v, fresh
}

type Store struct {
	mu sync.Mutex

	wind       record[Wind]
	air        record[Air]
	water      record[Water]
	throttle   record[Throttle]
	navigation record[Navigation]
	rudder     record[Rudder]
	dateTime   record[DateTime]
	power      record[Power]
	heading    record[Heading]
}

func NewStore() *Store {
	return &Store{}
}

func update[T any](s *Store, r *record[T], fn func(*T)) {
	s.mu.Lock()
	fn(&r.value)
	r.fresh = true
	s.mu.Unlock()
}

func take[T any](s *Store, r *record[T]) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.take()
}

// Writers. Each marks its record fresh.

func (s *Store) SetWindSpeed(v float32)     { update(s, &s.wind, func(w *Wind) { w.Speed = v }) }
func (s *Store) SetWindDirection(v float32) { update(s, &s.wind, func(w *Wind) { w.Direction = v }) }

func (s *Store) SetAirTemperature(v float32) { update(s, &s.air, func(a *Air) { a.Temperature = v }) }
func (s *Store) SetAirPressure(v float32)    { update(s, &s.air, func(a *Air) { a.Pressure = v }) }
func (s *Store) SetAirHumidity(v float32)    { update(s, &s.air, func(a *Air) { a.Humidity = v }) }

func (s *Store) SetWaterSpeed(v float32)       { update(s, &s.water, func(w *Water) { w.Speed = v }) }
func (s *Store) SetWaterTemperature(v float32) { update(s, &s.water, func(w *Water) { w.Temperature = v }) }
func (s *Store) SetWaterDepth(v float32)       { update(s, &s.water, func(w *Water) { w.Depth = v }) }

func (s *Store) SetThrottle(rpm int16) { update(s, &s.throttle, func(t *Throttle) { t.RPM = rpm }) }

func (s *Store) SetPosition(lat, lon float32) {
	update(s, &s.navigation, func(n *Navigation) {
		n.Latitude = lat
		n.Longitude = lon
	})
}

func (s *Store) SetVelocity(cog, sog float32) {
	update(s, &s.navigation, func(n *Navigation) {
		n.COG = cog
		n.SOG = sog
	})
}

func (s *Store) SetRudder(position float32) {
	update(s, &s.rudder, func(r *Rudder) { r.Position = position })
}

func (s *Store) SetDateTime(d DateTime) {
	update(s, &s.dateTime, func(v *DateTime) { *v = d })
}

func (s *Store) SetPower(p Power) {
	update(s, &s.power, func(v *Power) { *v = p })
}

func (s *Store) SetHeading(h Heading) {
	update(s, &s.heading, func(v *Heading) { *v = h })
}

// ClearNavigation zeroes the navigation record and its fresh flag.
func (s *Store) ClearNavigation() {
	s.mu.Lock()
	s.navigation = record[Navigation]{}
	s.mu.Unlock()
}

// Typed readers. Each returns the value and whether it changed since the last
// read, clearing the flag.

func (s *Store) Wind() (Wind, bool)             { return take(s, &s.wind) }
func (s *Store) Air() (Air, bool)               { return take(s, &s.air) }
func (s *Store) Water() (Water, bool)           { return take(s, &s.water) }
func (s *Store) Throttle() (Throttle, bool)     { return take(s, &s.throttle) }
func (s *Store) Navigation() (Navigation, bool) { return take(s, &s.navigation) }
func (s *Store) Rudder() (Rudder, bool)         { return take(s, &s.rudder) }
func (s *Store) DateTime() (DateTime, bool)     { return take(s, &s.dateTime) }
func (s *Store) Power() (Power, bool)           { return take(s, &s.power) }
func (s *Store) Heading() (Heading, bool)       { return take(s, &s.heading) }

// Packed readers: float32 fields little-endian, fresh flag in the last byte.

func (s *Store) WindPacked() [WindPackedSize]byte             { return Wind.pack(s.Wind()) }
func (s *Store) AirPacked() [AirPackedSize]byte               { return Air.pack(s.Air()) }
func (s *Store) WaterPacked() [WaterPackedSize]byte           { return Water.pack(s.Water()) }
func (s *Store) ThrottlePacked() [ThrottlePackedSize]byte     { return Throttle.pack(s.Throttle()) }
func (s *Store) NavigationPacked() [NavigationPackedSize]byte { return Navigation.pack(s.Navigation()) }
func (s *Store) RudderPacked() [RudderPackedSize]byte         { return Rudder.pack(s.Rudder()) }
func (s *Store) DateTimePacked() [DateTimePackedSize]byte     { return DateTime.pack(s.DateTime()) }
func (s *Store) PowerPacked() [PowerPackedSize]byte           { return Power.pack(s.Power()) }
func (s *Store) HeadingPacked() [HeadingPackedSize]byte       { return Heading.pack(s.Heading()) }

// Snapshot is every record with its flag.
type Snapshot struct {
	Wind       Reading[Wind]       `json:"wind"`
	Air        Reading[Air]        `json:"air"`
	Water      Reading[Water]      `json:"water"`
	Throttle   Reading[Throttle]   `json:"throttle"`
	Navigation Reading[Navigation] `json:"navigation"`
	Rudder     Reading[Rudder]     `json:"rudder"`
	DateTime   Reading[DateTime]   `json:"date_time"`
	Power      Reading[Power]      `json:"power"`
	Heading    Reading[Heading]    `json:"heading"`
}

// Peek copies every record without touching fresh flags.
func (s *Store) Peek() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Wind:       s.wind.reading(),
		Air:        s.air.reading(),
		Water:      s.water.reading(),
		Throttle:   s.throttle.reading(),
		Navigation: s.navigation.reading(),
		Rudder:     s.rudder.reading(),
		DateTime:   s.dateTime.reading(),
		Power:      s.power.reading(),
		Heading:    s.heading.reading(),
	}
}
