// SPDX-License-Identifier: EPL-2.0

package audio

// Kaiser windows sampled for the sinc filter, from libspeex.
var (
	kaiser12Table = []float64{
		0.99859849, 1.00000000, 0.99859849, 0.99440475, 0.98745105, 0.97779076,
		0.96549770, 0.95066529, 0.93340547, 0.91384741, 0.89213598, 0.86843014,
		0.84290116, 0.81573067, 0.78710866, 0.75723148, 0.72629970, 0.69451601,
		0.66208321, 0.62920216, 0.59606986, 0.56287762, 0.52980938, 0.49704014,
		0.46473455, 0.43304576, 0.40211431, 0.37206735, 0.34301800, 0.31506490,
		0.28829195, 0.26276832, 0.23854851, 0.21567274, 0.19416736, 0.17404546,
		0.15530766, 0.13794294, 0.12192957, 0.10723616, 0.09382272, 0.08164178,
		0.07063950, 0.06075685, 0.05193064, 0.04409466, 0.03718069, 0.03111947,
		0.02584161, 0.02127838, 0.01736250, 0.01402878, 0.01121463, 0.00886058,
		0.00691064, 0.00531256, 0.00401805, 0.00298291, 0.00216702, 0.00153438,
		0.00105297, 0.00069463, 0.00043489, 0.00025272, 0.00013031, 0.0000527734,
		0.00001000, 0.00000000,
	}

	kaiser10Table = []float64{
		0.99537781, 1.00000000, 0.99537781, 0.98162644, 0.95908712, 0.92831446,
		0.89005583, 0.84522401, 0.79486424, 0.74011713, 0.68217934, 0.62226347,
		0.56155915, 0.50119680, 0.44221549, 0.38553619, 0.33194107, 0.28205962,
		0.23636152, 0.19515633, 0.15859932, 0.12670280, 0.09935205, 0.07632451,
		0.05731132, 0.04193980, 0.02979584, 0.02044510, 0.01345224, 0.00839739,
		0.00488951, 0.00257636, 0.00115101, 0.00035515, 0.00000000, 0.00000000,
	}

	kaiser8Table = []float64{
		0.99635258, 1.00000000, 0.99635258, 0.98548012, 0.96759014, 0.94302200,
		0.91223751, 0.87580811, 0.83439927, 0.78875245, 0.73966538, 0.68797126,
		0.63451750, 0.58014482, 0.52566725, 0.47185369, 0.41941150, 0.36897272,
		0.32108304, 0.27619388, 0.23465776, 0.19672670, 0.16255380, 0.13219758,
		0.10562887, 0.08273982, 0.06335451, 0.04724088, 0.03412321, 0.02369490,
		0.01563093, 0.00959968, 0.00527363, 0.00233883, 0.00050000, 0.00000000,
	}

	kaiser6Table = []float64{
		0.99733006, 1.00000000, 0.99733006, 0.98935595, 0.97618418, 0.95799003,
		0.93501423, 0.90755855, 0.87598009, 0.84068475, 0.80211977, 0.76076565,
		0.71712752, 0.67172623, 0.62508937, 0.57774224, 0.53019925, 0.48295561,
		0.43647969, 0.39120616, 0.34752997, 0.30580127, 0.26632152, 0.22934058,
		0.19505503, 0.16360756, 0.13508755, 0.10953262, 0.08693120, 0.06722600,
		0.05031820, 0.03607231, 0.02432151, 0.01487334, 0.00752000, 0.00000000,
	}
)

type qualityMapping struct {
	baseLength          int
	oversample          int
	downsampleBandwidth float32
	upsampleBandwidth   float32
	window              []float64
}

// qualityMap is indexed by quality. Comments give the cutoff and stop band
// attenuation.
var qualityMap = [...]qualityMapping{
	{8, 4, 0.830, 0.860, kaiser6Table},     // Q0
	{16, 4, 0.850, 0.880, kaiser6Table},    // Q1
	{32, 4, 0.882, 0.910, kaiser6Table},    // Q2: 82.3% cutoff, ~60 dB
	{48, 8, 0.895, 0.917, kaiser8Table},    // Q3: 84.9% cutoff, ~80 dB
	{64, 8, 0.921, 0.940, kaiser8Table},    // Q4: 88.7% cutoff, ~80 dB
	{80, 16, 0.922, 0.940, kaiser10Table},  // Q5: 89.1% cutoff, ~100 dB
	{96, 16, 0.940, 0.945, kaiser10Table},  // Q6: 91.5% cutoff, ~100 dB
	{128, 16, 0.950, 0.950, kaiser10Table}, // Q7: 93.1% cutoff, ~100 dB
	{160, 16, 0.960, 0.960, kaiser10Table}, // Q8: 94.5% cutoff, ~100 dB
	{192, 32, 0.968, 0.968, kaiser12Table}, // Q9: 95.5% cutoff, ~100 dB
	{256, 32, 0.975, 0.975, kaiser12Table}, // Q10: 96.6% cutoff, ~100 dB
}
