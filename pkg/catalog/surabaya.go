package catalog

import (
	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
)

const SURABAYA_DEFAULT_START = "UNA"

type surabayaHospital struct {
	code string
	name string
	tier pkg.Tier
}

// index order of the built-in catalog, grouped by tier.
var surabayaHospitals = []surabayaHospital{
	{"DST", "RSUD Dr. Soetomo", pkg.TOP_TIER},
	{"SIL", "Siloam Hospitals Surabaya", pkg.TOP_TIER},
	{"MYP", "Mayapada Hospital Surabaya", pkg.TOP_TIER},
	{"PRS", "Premier Surabaya Hospital", pkg.TOP_TIER},
	{"NHS", "National Hospital Surabaya", pkg.TOP_TIER},

	{"BHY", "Bhayangkara Hospital Surabaya", pkg.UPPER_TIER},
	{"UNA", "Airlangga University Hospital", pkg.UPPER_TIER},
	{"HSU", "Husada Utama Hospital", pkg.UPPER_TIER},
	{"RSL", "Naval Hospital Dr. Ramelan", pkg.UPPER_TIER},
	{"MRN", "Marine Corps Hospital Gunungsari", pkg.UPPER_TIER},
	{"AUS", "Air Force Hospital dr. Soemitro", pkg.UPPER_TIER},
	{"RKZ", "St. Vincentius a Paulo Hospital", pkg.UPPER_TIER},
	{"BDH", "Bhakti Dharma Husada Hospital", pkg.UPPER_TIER},
	{"ONK", "Surabaya Oncology Hospital", pkg.UPPER_TIER},

	{"ADH", "Adi Husada Undaan Hospital", pkg.MIDDLE_TIER},
	{"MTK", "Mitra Keluarga Surabaya Hospital", pkg.MIDDLE_TIER},
	{"RYL", "Royal Hospital Surabaya", pkg.MIDDLE_TIER},
	{"JMR", "Jemursari Islamic Hospital", pkg.MIDDLE_TIER},
	{"ALR", "Al-Irsyad Hospital Surabaya", pkg.MIDDLE_TIER},
	{"PHC", "PHC Hospital Surabaya", pkg.MIDDLE_TIER},

	{"SMS", "Surabaya Medical Service Hospital", pkg.LOWER_MIDDLE_TIER},
	{"SBI", "Surabaya International Hospital", pkg.LOWER_MIDDLE_TIER},
	{"GTR", "Gotong Royong Hospital", pkg.LOWER_MIDDLE_TIER},
	{"WYS", "Wiyung Sejahtera Hospital", pkg.LOWER_MIDDLE_TIER},
	{"SEM", "Sejahtera Medical Hospital", pkg.LOWER_MIDDLE_TIER},
}

type surabayaRoad struct {
	a, b    string
	minutes float64
}

// undirected travel times in minutes between neighbouring hospitals.
var surabayaRoads = []surabayaRoad{
	{"DST", "SIL", 15}, {"DST", "MYP", 18}, {"DST", "NHS", 12}, {"DST", "BHY", 20}, {"DST", "UNA", 8},
	{"SIL", "MYP", 10}, {"SIL", "PRS", 22}, {"SIL", "HSU", 25},
	{"MYP", "PRS", 14},
	{"PRS", "NHS", 16}, {"PRS", "PHC", 30},
	{"NHS", "BHY", 18}, {"NHS", "UNA", 10},
	{"BHY", "UNA", 15}, {"BHY", "AUS", 25},
	{"UNA", "HSU", 12}, {"UNA", "RSL", 14},
	{"HSU", "RSL", 20},
	{"RSL", "MRN", 22}, {"RSL", "AUS", 18},
	{"MRN", "AUS", 16},
	{"AUS", "RKZ", 28},
	{"RKZ", "BDH", 20},
	{"BDH", "ONK", 15}, {"BDH", "ADH", 18},
	{"ONK", "ADH", 12},
	{"ADH", "MTK", 22},
	{"MTK", "RYL", 14}, {"MTK", "JMR", 25},
	{"RYL", "JMR", 18}, {"RYL", "ALR", 20},
	{"JMR", "ALR", 16}, {"JMR", "SBI", 30},
	{"ALR", "PHC", 22},
	{"PHC", "SMS", 28},
	{"SMS", "SBI", 20}, {"SMS", "GTR", 25},
	{"SBI", "GTR", 18},
	{"GTR", "WYS", 22},
	{"WYS", "SEM", 20},
}

// SurabayaMatrix returns the node catalog and the dense minute matrix of the built-in dataset,
// +Inf where two hospitals are not neighbours.
func SurabayaMatrix() ([]da.Node, [][]float64) {
	n := len(surabayaHospitals)
	nodes := make([]da.Node, n)
	pos := make(map[string]int, n)
	for i, h := range surabayaHospitals {
		nodes[i] = da.NewNode(h.code, h.name, h.tier)
		pos[h.code] = i
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			if i != j {
				matrix[i][j] = pkg.INF_WEIGHT
			}
		}
	}
	for _, r := range surabayaRoads {
		i, j := pos[r.a], pos[r.b]
		matrix[i][j] = r.minutes
		matrix[j][i] = r.minutes
	}
	return nodes, matrix
}

// Surabaya is the built-in catalog: 25 hospitals in four tiers, costs in minutes, start at UNA
// and no road conditions.
func Surabaya() (*Catalog, error) {
	nodes, matrix := SurabayaMatrix()
	topology, err := da.NewTopologyFromMatrix(nodes, matrix, da.RequireSymmetric())
	if err != nil {
		return nil, err
	}
	c, err := NewCatalog(topology, SURABAYA_DEFAULT_START, nil, nil)
	if err != nil {
		return nil, err
	}
	c.costPerSecond = 1.0 / 60
	return c, nil
}

// east Surabaya search area of the OSM based scripts.
const (
	EAST_SURABAYA_CENTER_LAT = -7.2797
	EAST_SURABAYA_CENTER_LON = 112.7975
	EAST_SURABAYA_RADIUS_M   = 3000.0
)

// EastSurabayaFacilities are the hospitals located by coordinates on the OSM road network.
func EastSurabayaFacilities() []Facility {
	return []Facility{
		NewFacility("UNA", "RS Universitas Airlangga", pkg.UPPER_TIER, -7.269874626602621, 112.7848445619724),
		NewFacility("ITS", "Medical Center ITS", pkg.LOWER_MIDDLE_TIER, -7.29042166801988, 112.7928147461148),
		NewFacility("HAJ", "RSUD Haji Provinsi Jawa Timur", pkg.TOP_TIER, -7.283321335332439, 112.77968466250103),
	}
}
